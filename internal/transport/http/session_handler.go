package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/session"
)

// SessionHandler exchanges the shared access secret for a session token.
type SessionHandler struct {
	store        *session.Store
	accessSecret string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewSessionHandler creates a session handler. An empty accessSecret
// disables the secret check (local use).
func NewSessionHandler(store *session.Store, accessSecret string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SessionHandler {
	return &SessionHandler{
		store:        store,
		accessSecret: accessSecret,
		logger:       logger.With(slog.String("handler", "session")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the session routes.
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Create)
	return r
}

// createSessionRequest is the login payload.
type createSessionRequest struct {
	Secret string `json:"secret" validate:"max=256"`
}

// Create handles POST /api/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if h.accessSecret != "" {
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.accessSecret)) != 1 {
			h.logger.WarnContext(r.Context(), "rejected login attempt",
				slog.String("remote_addr", r.RemoteAddr))
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidSecret)
			return
		}
	}

	sess := h.store.Create()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"session": sess.ID,
	})
}
