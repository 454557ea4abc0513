// storage определяет контракты доступа к хранилищам сервиса.
//
// Реализации: postgres (пользователи и рецепты), minio (изображения).
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_storage.go -package=mocks github.com/pribylovaa/smilecook/internal/storage Storage,ImageStorage

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email).
	ErrAlreadyExists = errors.New("already exists")
)

// ConflictError уточняет ErrAlreadyExists: какое поле нарушило уникальность.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string { return e.Field + " already exists" }

// Is позволяет сравнивать через errors.Is(err, ErrAlreadyExists).
func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// CreateUser создаёт нового пользователя.
	CreateUser(ctx context.Context, user *models.User) error
	// SaveUser сохраняет полную запись пользователя (upsert по id).
	SaveUser(ctx context.Context, user *models.User) error
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UserByUsername находит пользователя по username.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// ActivateUser переводит пользователя в активное состояние.
	// Возвращает false, если пользователь уже активен.
	ActivateUser(ctx context.Context, id uuid.UUID) (bool, error)
}

// RecipeUpdate — частичный апдейт рецепта.
// Обновляются только поля с непустыми указателями.
type RecipeUpdate struct {
	Name          *string
	Description   *string
	Ingredients   *string
	Directions    *string
	NumOfServings *int
	CookTime      *int
	IsPublish     *bool
	CoverImage    *string
}

// RecipeFilter — параметры выборки списка рецептов.
//   - OwnerID — только рецепты владельца (nil — все);
//   - Published — фильтр по флагу публикации (nil — любой);
//   - Query — подстрока названия без учёта регистра (пусто — без фильтра).
type RecipeFilter struct {
	OwnerID   *uuid.UUID
	Published *bool
	Query     string
	Sort      models.SortField
	Order     models.SortOrder
	Limit     int
	Offset    int
}

// RecipeStorage выполняет операции над рецептами.
// Все методы чтения заполняют Recipe.Author.
type RecipeStorage interface {
	// CreateRecipe создаёт рецепт.
	CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	// RecipeByID возвращает рецепт по ID.
	RecipeByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	// UpdateRecipe выполняет частичный апдейт и всегда сдвигает updated_at.
	UpdateRecipe(ctx context.Context, id uuid.UUID, update RecipeUpdate) (*models.Recipe, error)
	// DeleteRecipe удаляет рецепт.
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	// ListRecipes возвращает страницу рецептов и общее число подходящих записей.
	ListRecipes(ctx context.Context, filter RecipeFilter) (*models.RecipePage, error)
}

// Storage — верхнеуровневый контракт реляционного хранилища.
type Storage interface {
	UserStorage
	RecipeStorage
	Ping(ctx context.Context) error
	Close()
}
