package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/pkg/contracts/domain"
)

func newTestStore(cfg Config) (*Store, *time.Time) {
	store := NewStore(cfg, nil)
	current := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestStore_CreateAndGet(t *testing.T) {
	store, _ := newTestStore(Config{})

	sess := store.Create()
	require.NotEmpty(t, sess.ID)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_GetUnknown(t *testing.T) {
	store, _ := newTestStore(Config{})

	_, err := store.Get("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ResultsAreSessionScoped(t *testing.T) {
	store, _ := newTestStore(Config{})

	a := store.Create()
	b := store.Create()

	resultA := &domain.Result{Summary: domain.Summary{TotalRequests: 7}}
	require.NoError(t, store.SetResult(a.ID, resultA))

	gotA, err := store.Result(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, gotA.Summary.TotalRequests)

	gotB, err := store.Result(b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotB, "another session must not see the first session's result")
}

func TestStore_TTLExpiry(t *testing.T) {
	store, now := newTestStore(Config{TTL: time.Hour})

	sess := store.Create()

	*now = now.Add(30 * time.Minute)
	_, err := store.Get(sess.ID)
	require.NoError(t, err)

	// Get refreshed last-seen, so expiry counts from the last touch.
	*now = now.Add(61 * time.Minute)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_SetResultOnExpiredSession(t *testing.T) {
	store, now := newTestStore(Config{TTL: time.Hour})

	sess := store.Create()
	*now = now.Add(2 * time.Hour)

	_, err := store.Get(sess.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = store.SetResult(sess.ID, &domain.Result{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CapacityEvictsLRU(t *testing.T) {
	store, now := newTestStore(Config{MaxSessions: 2, TTL: time.Hour})

	first := store.Create()
	*now = now.Add(time.Minute)
	second := store.Create()

	// Touch the first so the second becomes least recently used.
	*now = now.Add(time.Minute)
	_, err := store.Get(first.ID)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	third := store.Create()

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(second.ID)
	assert.ErrorIs(t, err, ErrNotFound, "least recently used session should be evicted")
	_, err = store.Get(first.ID)
	assert.NoError(t, err)
	_, err = store.Get(third.ID)
	assert.NoError(t, err)
}

func TestStore_Sweep(t *testing.T) {
	store, now := newTestStore(Config{TTL: time.Hour})

	stale := store.Create()
	*now = now.Add(2 * time.Hour)
	fresh := store.Create()

	store.sweep()

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestStore_CountCallback(t *testing.T) {
	store, _ := newTestStore(Config{})

	var counts []int
	store.OnCountChange(func(count int) { counts = append(counts, count) })

	a := store.Create()
	store.Create()
	store.Delete(a.ID)

	assert.Equal(t, []int{1, 2, 1}, counts)
}
