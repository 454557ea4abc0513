package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe — рецепт с ровно одним владельцем.
// NumOfServings и CookTime необязательны (nil — не указано).
// Флаг IsPublish определяет видимость рецепта для всех, кроме владельца.
type Recipe struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	Description   string
	Ingredients   string
	Directions    string
	NumOfServings *int
	CookTime      *int
	IsPublish     bool
	CoverImage    string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Author заполняется хранилищем при чтении (JOIN users).
	Author *Author
}

// Visibility — фильтр списка рецептов пользователя.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityAll     Visibility = "all"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility разбирает значение фильтра; неизвестное значение даёт public.
func ParseVisibility(s string) Visibility {
	switch Visibility(s) {
	case VisibilityAll:
		return VisibilityAll
	case VisibilityPrivate:
		return VisibilityPrivate
	default:
		return VisibilityPublic
	}
}

// SortField — колонка сортировки публичного списка.
type SortField string

const (
	SortCreatedAt     SortField = "created_at"
	SortCookTime      SortField = "cook_time"
	SortNumOfServings SortField = "num_of_servings"
)

// ParseSortField разбирает поле сортировки; неизвестное значение даёт created_at.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortCookTime:
		return SortCookTime
	case SortNumOfServings:
		return SortNumOfServings
	default:
		return SortCreatedAt
	}
}

// SortOrder — направление сортировки.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ParseSortOrder разбирает направление; неизвестное значение даёт desc.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == OrderAsc {
		return OrderAsc
	}

	return OrderDesc
}

// RecipePage — одна страница рецептов и общее число подходящих записей.
type RecipePage struct {
	Items []*Recipe
	Total int
}
