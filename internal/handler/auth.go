package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in service.LoginInput) (*model.TokenPair, error)
	Refresh(ctx context.Context, in service.RefreshInput) (string, error)
}

// AuthHandler serves the unauthenticated account routes: registration and
// the token endpoints.
type AuthHandler struct {
	responder
	auth AuthService
}

func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{responder: responder{logger: logger}, auth: auth}
}

// HandleRegister handles POST /users. The response is the public projection
// {id, username}; model.User never serializes its hash.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Debug("account created", slog.String("userID", user.ID))
	h.writeJSON(w, http.StatusCreated, user)
}

// HandleObtainToken handles POST /token.
func (h *AuthHandler) HandleObtainToken(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	pair, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pair)
}

type refreshResponse struct {
	Access string `json:"access"`
}

// HandleRefreshToken handles POST /token/refresh.
func (h *AuthHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var in service.RefreshInput
	if !h.decodeJSON(w, r, &in) {
		return
	}

	access, err := h.auth.Refresh(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, refreshResponse{Access: access})
}
