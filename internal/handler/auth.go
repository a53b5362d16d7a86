package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/service"
)

// AuthHandler serves registration, login and the current-user lookup.
//
//   - HandleRegister → POST /api/users
//   - HandleLogin    → POST /api/auth
//   - HandleMe       → GET  /api/auth (RequireAuth)
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// HandleRegister creates an account and answers with its session token.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// HandleMe returns the authenticated user. The password hash never leaves
// the server: model.User does not serialize it.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		h.logger.Warn("HandleMe: user lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// requireUser returns the user id RequireAuth put on the request. It writes
// a 401 itself when the route was mounted without the middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "No token, authorization denied",
		})
		return "", false
	}
	return userID, true
}
