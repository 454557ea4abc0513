package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/http/middleware"
	"github.com/pribylovaa/smilecook/internal/pagination"
	"github.com/pribylovaa/smilecook/internal/service"
)

// CreateUser — POST /users: регистрация, письмо с активацией уходит на email.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.svc.Register(r.Context(), in.input())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.userFromModel(user, true))
}

// GetUser — GET /users/{username}. Владелец видит свой email.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	user, isOwner, err := h.svc.Profile(r.Context(), chi.URLParam(r, "username"), middleware.UserIDFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.userFromModel(user, isOwner))
}

// GetMe — GET /me.
func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	user, err := h.svc.Me(r.Context(), *uid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.userFromModel(user, true))
}

// ListUserRecipes — GET /users/{username}/recipes?page&per_page&visibility.
func (h *Handlers) ListUserRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pagination.Params(q, h.limits.UserDefaultPerPage, h.limits.MaxPerPage)

	res, err := h.svc.ListUserRecipes(r.Context(), service.UserRecipesQuery{
		Username:   chi.URLParam(r, "username"),
		Viewer:     middleware.UserIDFrom(r.Context()),
		Visibility: q.Get("visibility"),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pagination.New(requestURL(r), page, perPage, res.Total, h.recipesFromModel(res.Items)))
}

// ActivateUser — GET /users/activate/{token}.
func (h *Handlers) ActivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Activate(r.Context(), chi.URLParam(r, "token")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetAvatar — PUT /users/avatar, multipart-поле avatar.
func (h *Handlers) SetAvatar(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	file, header, err := h.formFile(w, r, "avatar")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer file.Close()

	user, err := h.svc.SetAvatar(r.Context(), *uid, header.Filename, file)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{AvatarURL: h.svc.AvatarURL(user.Avatar)})
}
