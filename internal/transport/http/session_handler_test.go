package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSessionHandler(secret string) (*SessionHandler, *session.Store) {
	logger := testLogger()
	store := session.NewStore(session.Config{}, logger)
	handler := NewSessionHandler(store, secret, logger, apierrors.NewErrorHandler(logger, false))
	return handler, store
}

func postSession(t *testing.T, h *SessionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestSessionCreate_CorrectSecret(t *testing.T) {
	h, store := newSessionHandler("letmein")

	rec := postSession(t, h, `{"secret":"letmein"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	require.NotEmpty(t, body["session"])

	_, err := store.Get(body["session"])
	assert.NoError(t, err, "returned token must resolve in the store")
}

func TestSessionCreate_WrongSecret(t *testing.T) {
	h, store := newSessionHandler("letmein")

	rec := postSession(t, h, `{"secret":"guess"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestSessionCreate_NoSecretConfigured(t *testing.T) {
	h, _ := newSessionHandler("")

	rec := postSession(t, h, `{}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSessionCreate_MalformedBody(t *testing.T) {
	h, _ := newSessionHandler("letmein")

	rec := postSession(t, h, `{"secret":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionCreate_OverlongSecretRejected(t *testing.T) {
	h, _ := newSessionHandler("letmein")

	rec := postSession(t, h, `{"secret":"`+strings.Repeat("x", 300)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
