package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// recipeColumns — колонки рецепта (алиас r) и автора (алиас u) в порядке scanRecipe.
const recipeColumns = `
r.id, r.user_id, r.name, r.description, r.ingredients, r.directions,
r.num_of_servings, r.cook_time, r.is_publish, r.cover_image, r.created_at, r.updated_at,
u.id, u.username, u.avatar_image, u.created_at, u.updated_at
`

// sortColumns — белый список колонок сортировки.
var sortColumns = map[models.SortField]string{
	models.SortCreatedAt:     "r.created_at",
	models.SortCookTime:      "r.cook_time",
	models.SortNumOfServings: "r.num_of_servings",
}

func scanRecipe(row pgx.Row) (*models.Recipe, error) {
	var (
		recipe models.Recipe
		author models.Author
	)

	if err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Name,
		&recipe.Description,
		&recipe.Ingredients,
		&recipe.Directions,
		&recipe.NumOfServings,
		&recipe.CookTime,
		&recipe.IsPublish,
		&recipe.CoverImage,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
		&author.ID,
		&author.Username,
		&author.Avatar,
		&author.CreatedAt,
		&author.UpdatedAt,
	); err != nil {
		return nil, err
	}

	recipe.CreatedAt = recipe.CreatedAt.UTC()
	recipe.UpdatedAt = recipe.UpdatedAt.UTC()
	author.CreatedAt = author.CreatedAt.UTC()
	author.UpdatedAt = author.UpdatedAt.UTC()
	recipe.Author = &author

	return &recipe, nil
}

// CreateRecipe вставляет рецепт и возвращает его вместе с автором.
// Ошибки: storage.ErrNotFound, если владельца не существует.
func (s *Storage) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	const op = "storage.postgres.CreateRecipe"

	query := `
	WITH r AS (
		INSERT INTO recipes (id, user_id, name, description, ingredients, directions,
			num_of_servings, cook_time, is_publish, cover_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *
	)
	SELECT ` + recipeColumns + ` FROM r JOIN users u ON u.id = r.user_id`

	result, err := scanRecipe(s.db.QueryRow(ctx, query,
		recipe.ID,
		recipe.UserID,
		recipe.Name,
		recipe.Description,
		recipe.Ingredients,
		recipe.Directions,
		recipe.NumOfServings,
		recipe.CookTime,
		recipe.IsPublish,
		recipe.CoverImage,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		if cerr := conflictError(err); cerr != nil {
			return nil, fmt.Errorf("%s: %w", op, cerr)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// RecipeByID возвращает рецепт по ID.
func (s *Storage) RecipeByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	const op = "storage.postgres.RecipeByID"

	query := `SELECT ` + recipeColumns + ` FROM recipes r JOIN users u ON u.id = r.user_id WHERE r.id = $1`

	result, err := scanRecipe(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateRecipe выполняет частичный апдейт: обновляет только поля,
// указанные непустыми pointer-полями, и всегда сдвигает updated_at = now().
func (s *Storage) UpdateRecipe(ctx context.Context, id uuid.UUID, update storage.RecipeUpdate) (*models.Recipe, error) {
	const op = "storage.postgres.UpdateRecipe"

	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Ingredients != nil {
		add("ingredients", *update.Ingredients)
	}
	if update.Directions != nil {
		add("directions", *update.Directions)
	}
	if update.NumOfServings != nil {
		add("num_of_servings", *update.NumOfServings)
	}
	if update.CookTime != nil {
		add("cook_time", *update.CookTime)
	}
	if update.IsPublish != nil {
		add("is_publish", *update.IsPublish)
	}
	if update.CoverImage != nil {
		add("cover_image", *update.CoverImage)
	}

	query := `
	WITH r AS (
		UPDATE recipes SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1
		RETURNING *
	)
	SELECT ` + recipeColumns + ` FROM r JOIN users u ON u.id = r.user_id`

	result, err := scanRecipe(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeleteRecipe удаляет рецепт; storage.ErrNotFound, если записи нет.
func (s *Storage) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteRecipe"

	tag, err := s.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// ListRecipes возвращает страницу рецептов по фильтру.
// Подсчёт и выборка страницы выполняются в одной read-only транзакции,
// чтобы total и items видели один снимок данных.
func (s *Storage) ListRecipes(ctx context.Context, filter storage.RecipeFilter) (page *models.RecipePage, err error) {
	const op = "storage.postgres.ListRecipes"

	where, args := recipeWhere(filter)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	page = &models.RecipePage{Items: []*models.Recipe{}}

	countQuery := `SELECT count(*) FROM recipes r WHERE ` + where
	if err = tx.QueryRow(ctx, countQuery, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("%s: count: %w", op, err)
	}

	if page.Total > filter.Offset {
		if err = s.selectPage(ctx, tx, filter, where, args, page); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return page, nil
}

func (s *Storage) selectPage(ctx context.Context, tx pgx.Tx, filter storage.RecipeFilter, where string, args []any, page *models.RecipePage) error {
	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[models.SortCreatedAt]
	}

	order := "DESC"
	if filter.Order == models.OrderAsc {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM recipes r JOIN users u ON u.id = r.user_id WHERE %s ORDER BY %s %s, r.id %s LIMIT $%d OFFSET $%d`,
		recipeColumns, where, column, order, order, len(args)-1, len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return fmt.Errorf("scan row: %w", err)
		}

		page.Items = append(page.Items, recipe)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}

	return nil
}

// recipeWhere строит условие WHERE и аргументы по фильтру.
func recipeWhere(filter storage.RecipeFilter) (string, []any) {
	conds := []string{"TRUE"}
	args := make([]any, 0, 3)

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("r.user_id = $%d", len(args)))
	}

	if filter.Published != nil {
		args = append(args, *filter.Published)
		conds = append(conds, fmt.Sprintf("r.is_publish = $%d", len(args)))
	}

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		conds = append(conds, fmt.Sprintf(`r.name ILIKE $%d ESCAPE '\'`, len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// escapeLike экранирует метасимволы LIKE, чтобы q искался как подстрока.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
