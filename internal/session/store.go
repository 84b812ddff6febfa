package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reqcheck/pkg/contracts/domain"
)

// ErrNotFound is returned for unknown or expired session tokens.
var ErrNotFound = errors.New("session not found")

// Session holds one caller's reconciliation state. Results live here and
// nowhere else; nothing is shared across sessions.
type Session struct {
	ID        string
	CreatedAt time.Time
	lastSeen  time.Time
	result    *domain.Result
}

// Config controls store capacity and eviction.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// Store is an in-memory, TTL-evicted session store. Safe for concurrent
// use; each session's data stays scoped to its token.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	// onCountChange reports the live session count, for metrics.
	onCountChange func(count int)
}

// NewStore creates a session store.
func NewStore(cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 256
	}
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "session_store")),
		now:      time.Now,
	}
}

// OnCountChange registers a callback invoked with the session count after
// every change. Used to feed the active-sessions gauge.
func (s *Store) OnCountChange(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCountChange = fn
}

// Create opens a new session and returns its token. When the store is at
// capacity the least recently used session is evicted first.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		lastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	s.notifyLocked()

	s.logger.Info("session created", slog.String("session_id", sess.ID))
	return sess
}

// Get returns the session for a token, refreshing its last-seen time.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().Sub(sess.lastSeen) > s.cfg.TTL {
		delete(s.sessions, id)
		s.notifyLocked()
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// SetResult stores a reconciliation result on the session.
func (s *Store) SetResult(id string, result *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.result = result
	sess.lastSeen = s.now()
	return nil
}

// Result returns the session's stored reconciliation result, or nil when no
// run has completed yet.
func (s *Store) Result(id string) (*domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.result, nil
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	s.notifyLocked()
}

// Len returns the live session count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartSweeper evicts expired sessions periodically until ctx is done.
func (s *Store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.cfg.TTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.notifyLocked()
		s.logger.Info("swept expired sessions", slog.Int("removed", removed))
	}
}

// evictOldestLocked drops the least recently used session. Caller holds mu.
func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID = id
			oldest = sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Warn("evicted session at capacity", slog.String("session_id", oldestID))
	}
}

func (s *Store) notifyLocked() {
	if s.onCountChange != nil {
		s.onCountChange(len(s.sessions))
	}
}
