package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/images"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/pagination"
	"github.com/pribylovaa/smilecook/internal/pkg/log"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// PublishedQuery — параметры публичного поиска рецептов.
// Sort и Order — сырые значения из запроса; неизвестные значения
// заменяются на created_at и desc.
type PublishedQuery struct {
	Query   string
	Sort    string
	Order   string
	Page    int
	PerPage int
}

// UserRecipesQuery — параметры списка рецептов пользователя.
type UserRecipesQuery struct {
	Username   string
	Viewer     *uuid.UUID
	Visibility string
	Page       int
	PerPage    int
}

// EffectiveVisibility возвращает видимость, которая реально применяется к списку.
// all и private доступны только владельцу; всё остальное сводится к public.
func EffectiveVisibility(requested string, viewer *uuid.UUID, owner uuid.UUID) models.Visibility {
	v := models.ParseVisibility(requested)
	if viewer == nil || *viewer != owner {
		return models.VisibilityPublic
	}

	return v
}

// CreateRecipe создаёт неопубликованный рецепт, принадлежащий userID.
func (s *Service) CreateRecipe(ctx context.Context, userID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	const op = "service.recipes.CreateRecipe"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if err := validateRecipe(in, false); err != nil {
		lg.Warn("invalid argument", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recipe := &models.Recipe{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(*in.Name),
		Description:   deref(in.Description),
		Ingredients:   deref(in.Ingredients),
		Directions:    deref(in.Directions),
		NumOfServings: in.NumOfServings,
		CookTime:      in.CookTime,
	}

	created, err := s.storage.CreateRecipe(ctx, recipe)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("owner not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on CreateRecipe", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("recipe created", "recipe_id", created.ID.String())

	return created, nil
}

// Recipe возвращает рецепт по ID.
// Неопубликованный рецепт доступен только владельцу, остальным -> ErrForbidden.
func (s *Service) Recipe(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Recipe, error) {
	const op = "service.recipes.Recipe"

	recipe, err := s.recipeByID(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if !recipe.IsPublish && (viewer == nil || *viewer != recipe.UserID) {
		log.From(ctx).Warn("unpublished recipe requested by non-owner", "op", op, "recipe_id", id.String())

		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return recipe, nil
}

// UpdateRecipe частично обновляет рецепт владельца.
// Меняются только переданные поля; пустой вход только сдвигает updated_at.
func (s *Service) UpdateRecipe(ctx context.Context, id, userID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	const op = "service.recipes.UpdateRecipe"

	lg := log.From(ctx).With("op", op, "recipe_id", id.String(), "user_id", userID.String())

	if err := validateRecipe(in, true); err != nil {
		lg.Warn("invalid argument", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.ownedRecipe(ctx, op, id, userID); err != nil {
		return nil, err
	}

	upd := storage.RecipeUpdate{
		Description:   in.Description,
		Ingredients:   in.Ingredients,
		Directions:    in.Directions,
		NumOfServings: in.NumOfServings,
		CookTime:      in.CookTime,
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		upd.Name = &name
	}

	return s.applyUpdate(ctx, op, id, upd)
}

// SetPublished публикует (true) или скрывает (false) рецепт владельца.
func (s *Service) SetPublished(ctx context.Context, id, userID uuid.UUID, publish bool) error {
	const op = "service.recipes.SetPublished"

	if _, err := s.ownedRecipe(ctx, op, id, userID); err != nil {
		return err
	}

	if _, err := s.applyUpdate(ctx, op, id, storage.RecipeUpdate{IsPublish: &publish}); err != nil {
		return err
	}

	log.From(ctx).Info("recipe visibility changed", "op", op, "recipe_id", id.String(), "is_publish", publish)

	return nil
}

// DeleteRecipe удаляет рецепт владельца вместе с файлом обложки.
func (s *Service) DeleteRecipe(ctx context.Context, id, userID uuid.UUID) error {
	const op = "service.recipes.DeleteRecipe"

	lg := log.From(ctx).With("op", op, "recipe_id", id.String())

	recipe, err := s.ownedRecipe(ctx, op, id, userID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("recipe deleted concurrently")

			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeleteRecipe", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.removeImage(ctx, storage.FolderRecipes, recipe.CoverImage)

	lg.Info("recipe deleted")

	return nil
}

// SetCover заменяет обложку рецепта владельца.
func (s *Service) SetCover(ctx context.Context, id, userID uuid.UUID, filename string, r io.Reader) (*models.Recipe, error) {
	const op = "service.recipes.SetCover"

	lg := log.From(ctx).With("op", op, "recipe_id", id.String())

	if !images.Allowed(filename) {
		lg.Warn("file type not allowed", "filename", filename)

		return nil, fmt.Errorf("%s: %w", op, imageError("cover", images.ErrUnsupportedType))
	}

	recipe, err := s.ownedRecipe(ctx, op, id, userID)
	if err != nil {
		return nil, err
	}

	name, err := s.saveImage(ctx, storage.FolderRecipes, "cover", filename, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.applyUpdate(ctx, op, id, storage.RecipeUpdate{CoverImage: &name})
	if err != nil {
		s.removeImage(ctx, storage.FolderRecipes, name)

		return nil, err
	}

	s.removeImage(ctx, storage.FolderRecipes, recipe.CoverImage)

	lg.Info("cover updated", "cover", name)

	return updated, nil
}

// ListPublished возвращает страницу опубликованных рецептов.
func (s *Service) ListPublished(ctx context.Context, q PublishedQuery) (*models.RecipePage, error) {
	const op = "service.recipes.ListPublished"

	published := true
	filter := storage.RecipeFilter{
		Published: &published,
		Query:     strings.TrimSpace(q.Query),
		Sort:      models.ParseSortField(q.Sort),
		Order:     models.ParseSortOrder(q.Order),
		Limit:     q.PerPage,
		Offset:    pagination.Offset(q.Page, q.PerPage),
	}

	return s.list(ctx, op, filter)
}

// ListUserRecipes возвращает страницу рецептов пользователя с учётом видимости:
// владелец с visibility=all получает все рецепты, с private только неопубликованные;
// остальные запросы сводятся к опубликованным.
func (s *Service) ListUserRecipes(ctx context.Context, q UserRecipesQuery) (*models.RecipePage, error) {
	const op = "service.recipes.ListUserRecipes"

	owner, err := s.userByUsername(ctx, op, q.Username)
	if err != nil {
		return nil, err
	}

	filter := storage.RecipeFilter{
		OwnerID: &owner.ID,
		Sort:    models.SortCreatedAt,
		Order:   models.OrderDesc,
		Limit:   q.PerPage,
		Offset:  pagination.Offset(q.Page, q.PerPage),
	}

	switch EffectiveVisibility(q.Visibility, q.Viewer, owner.ID) {
	case models.VisibilityAll:
	case models.VisibilityPrivate:
		unpublished := false
		filter.Published = &unpublished
	default:
		published := true
		filter.Published = &published
	}

	return s.list(ctx, op, filter)
}

func (s *Service) list(ctx context.Context, op string, filter storage.RecipeFilter) (*models.RecipePage, error) {
	page, err := s.storage.ListRecipes(ctx, filter)
	if err != nil {
		log.From(ctx).Error("storage error on ListRecipes", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return page, nil
}

func (s *Service) recipeByID(ctx context.Context, op string, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.storage.RecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Warn("recipe not found", "op", op, "recipe_id", id.String())

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("storage error on RecipeByID", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return recipe, nil
}

// ownedRecipe загружает рецепт и проверяет, что им владеет userID.
func (s *Service) ownedRecipe(ctx context.Context, op string, id, userID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipeByID(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if recipe.UserID != userID {
		log.From(ctx).Warn("non-owner access", "op", op, "recipe_id", id.String(), "user_id", userID.String())

		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return recipe, nil
}

func (s *Service) applyUpdate(ctx context.Context, op string, id uuid.UUID, upd storage.RecipeUpdate) (*models.Recipe, error) {
	updated, err := s.storage.UpdateRecipe(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Warn("recipe deleted concurrently", "op", op, "recipe_id", id.String())

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("storage error on UpdateRecipe", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return updated, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
