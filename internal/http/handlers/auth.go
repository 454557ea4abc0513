package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/http/middleware"
	"github.com/pribylovaa/smilecook/internal/service"
)

// CreateToken — POST /token: вход по email и паролю.
func (h *Handlers) CreateToken(w http.ResponseWriter, r *http.Request) {
	var in tokenRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshToken — POST /refresh: обмен refresh-токена на новый access-токен.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	token, err := h.svc.Refresh(r.Context(), claims)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: token})
}

// RevokeToken — POST /revoke: выход, текущий access-токен попадает в список отозванных.
func (h *Handlers) RevokeToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	if err := h.svc.Revoke(r.Context(), claims); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully logged out"})
}
