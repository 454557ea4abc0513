package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// userColumns — единый список колонок users для SELECT/RETURNING.
const userColumns = `id, username, email, password_hash, is_active, avatar_image, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, nil
}

// CreateUser создаёт нового пользователя.
// Ошибки: storage.ConflictError (errors.Is -> storage.ErrAlreadyExists) при занятом username/email.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.CreateUser"

	query := `
		INSERT INTO users (id, username, email, password_hash, is_active, avatar_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.Avatar,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return fmt.Errorf("%s: %w", op, cerr)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SaveUser сохраняет полную запись пользователя (upsert по id); updated_at = now().
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, username, email, password_hash, is_active, avatar_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			is_active = EXCLUDED.is_active,
			avatar_image = EXCLUDED.avatar_image,
			updated_at = now()
		RETURNING updated_at
	`

	err := s.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.Avatar,
		user.CreatedAt,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return fmt.Errorf("%s: %w", op, cerr)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	user.UpdatedAt = user.UpdatedAt.UTC()

	return nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userBy(ctx, "storage.postgres.UserByID", "id", id)
}

// UserByUsername находит пользователя по username.
func (s *Storage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userBy(ctx, "storage.postgres.UserByUsername", "username", username)
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userBy(ctx, "storage.postgres.UserByEmail", "email", email)
}

// userBy — общий поиск по уникальной колонке; column задаётся только константами выше.
func (s *Storage) userBy(ctx context.Context, op, column string, value any) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ActivateUser переводит is_active в TRUE только для неактивного пользователя.
// Возвращает (false, nil), если пользователь уже активен;
// storage.ErrNotFound, если пользователя нет.
func (s *Storage) ActivateUser(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "storage.postgres.ActivateUser"

	query := `
		UPDATE users
		SET is_active = TRUE, updated_at = now()
		WHERE id = $1 AND is_active = FALSE
		RETURNING id
	`

	var got uuid.UUID
	err := s.db.QueryRow(ctx, query, id).Scan(&got)
	if err == nil {
		return true, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return false, nil
}
