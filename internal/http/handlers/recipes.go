package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/http/middleware"
	"github.com/pribylovaa/smilecook/internal/pagination"
	"github.com/pribylovaa/smilecook/internal/service"
)

// ListRecipes — GET /recipes?q&page&per_page&sort&order: только опубликованные рецепты.
func (h *Handlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pagination.Params(q, h.limits.DefaultPerPage, h.limits.MaxPerPage)

	res, err := h.svc.ListPublished(r.Context(), service.PublishedQuery{
		Query:   q.Get("q"),
		Sort:    q.Get("sort"),
		Order:   q.Get("order"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pagination.New(requestURL(r), page, perPage, res.Total, h.recipesFromModel(res.Items)))
}

// CreateRecipe — POST /recipes.
func (h *Handlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	var in recipeRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), *uid, in.input())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.recipeFromModel(recipe))
}

// GetRecipe — GET /recipes/{id}. Неопубликованный рецепт виден только владельцу.
func (h *Handlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	recipe, err := h.svc.Recipe(r.Context(), id, middleware.UserIDFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.recipeFromModel(recipe))
}

// UpdateRecipe — PATCH /recipes/{id}: меняются только переданные поля.
func (h *Handlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in recipeRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), id, *uid, in.input())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.recipeFromModel(recipe))
}

// DeleteRecipe — DELETE /recipes/{id}.
func (h *Handlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, func(ctx context.Context, id, uid uuid.UUID) error {
		return h.svc.DeleteRecipe(ctx, id, uid)
	})
}

// PublishRecipe — PUT /recipes/{id}/publish.
func (h *Handlers) PublishRecipe(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, func(ctx context.Context, id, uid uuid.UUID) error {
		return h.svc.SetPublished(ctx, id, uid, true)
	})
}

// UnpublishRecipe — DELETE /recipes/{id}/publish.
func (h *Handlers) UnpublishRecipe(w http.ResponseWriter, r *http.Request) {
	h.ownerAction(w, r, func(ctx context.Context, id, uid uuid.UUID) error {
		return h.svc.SetPublished(ctx, id, uid, false)
	})
}

// SetCover — PUT /recipes/{id}/cover, multipart-поле cover.
func (h *Handlers) SetCover(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	file, header, err := h.formFile(w, r, "cover")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	defer file.Close()

	recipe, err := h.svc.SetCover(r.Context(), id, *uid, header.Filename, file)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, coverResponse{CoverURL: h.svc.CoverURL(recipe.CoverImage)})
}

// ownerAction выполняет действие владельца над рецептом из пути и отвечает 204.
func (h *Handlers) ownerAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id, uid uuid.UUID) error) {
	uid := middleware.UserIDFrom(r.Context())
	if uid == nil {
		apierrors.WriteError(w, r, service.ErrUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := action(r.Context(), id, *uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
