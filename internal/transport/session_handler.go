package transport

import (
	"net/http"
	"strings"

	"marketplace/internal/middleware"
	"marketplace/internal/service"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages returned by the session endpoint
const (
	MessageInvalidCredentials = "Credenciales inválidas."
	MessageMissingCredentials = "Usuario y contraseña son obligatorios."
)

// SessionRequest represents the owner login payload
type SessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse carries the issued access token
type SessionResponse struct {
	AccessToken string `json:"accessToken"`
}

// SessionHandler issues owner session tokens
type SessionHandler struct {
	owners service.OwnerService
	logger *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(owners service.OwnerService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{owners: owners, logger: logger}
}

// RegisterRoutes registers the session route
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/session", h.Login)
}

// Login exchanges owner credentials for an access token
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessagePayloadTooBig)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, middleware.MessageInvalidJSON)
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, MessageMissingCredentials)
		return
	}

	token, err := h.owners.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warn("Owner login rejected", zap.String("username", strings.TrimSpace(req.Username)))
			middleware.RespondWithError(w, http.StatusUnauthorized, MessageInvalidCredentials)
			return
		}
		h.logger.Error("Owner login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("Owner session issued", zap.String("username", strings.TrimSpace(req.Username)))
	middleware.RespondWithJSON(w, http.StatusOK, SessionResponse{AccessToken: token})
}
