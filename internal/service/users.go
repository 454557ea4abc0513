package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/auth"
	"github.com/pribylovaa/smilecook/internal/images"
	"github.com/pribylovaa/smilecook/internal/mail"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/pkg/log"
	"github.com/pribylovaa/smilecook/internal/pkg/redact"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// Register регистрирует нового пользователя и отправляет письмо со ссылкой активации.
//
// Валидация: username (1..80), email (корректный адрес, до 200), password (от 8 символов).
//
// Поведение:
//   - занятые username/email -> *ConflictError ("username already used" / "email already used");
//   - пользователь создаётся неактивным;
//   - сбой отправки письма логируется и не отменяет регистрацию.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.users.Register"

	in = in.normalize()
	lg := log.From(ctx).With("op", op, "username", in.Username, "email", redact.Email(in.Email))

	if err := validateRegister(in); err != nil {
		lg.Warn("invalid argument", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ensureFree(ctx, in.Username, in.Email); err != nil {
		lg.Warn("registration rejected", "err", err)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		lg.Error("hash password failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		var conflict *storage.ConflictError
		switch {
		case errors.As(err, &conflict):
			lg.Warn("unique violation on insert", "field", conflict.Field)

			return nil, fmt.Errorf("%s: %w", op, &ConflictError{Message: conflict.Field + " already used"})
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("unique violation on insert")

			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		default:
			lg.Error("storage error on CreateUser", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	s.sendActivation(ctx, user)

	lg.Info("user registered", "user_id", user.ID.String())

	return user, nil
}

// ensureFree проверяет, что username и email ещё не заняты.
func (s *Service) ensureFree(ctx context.Context, username, email string) error {
	_, err := s.storage.UserByUsername(ctx, username)
	switch {
	case err == nil:
		return &ConflictError{Message: "username already used"}
	case !errors.Is(err, storage.ErrNotFound):
		log.From(ctx).Error("storage error on UserByUsername", "err", err)

		return ErrInternal
	}

	_, err = s.storage.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return &ConflictError{Message: "email already used"}
	case !errors.Is(err, storage.ErrNotFound):
		log.From(ctx).Error("storage error on UserByEmail", "err", err)

		return ErrInternal
	}

	return nil
}

// sendActivation отправляет письмо активации; ошибки только логируются.
func (s *Service) sendActivation(ctx context.Context, user *models.User) {
	lg := log.From(ctx).With("user_id", user.ID.String())

	token, err := s.signer.Issue(user.Email, auth.PurposeActivate)
	if err != nil {
		lg.Error("issue activation token failed", "err", err)

		return
	}

	msg, err := mail.ActivationMessage(user.Username, user.Email, s.activationLink(token))
	if err != nil {
		lg.Error("build activation message failed", "err", err)

		return
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		lg.Error("send activation mail failed", "err", err)
	}
}

// Activate подтверждает e-mail по токену из письма.
//
// Поведение:
//   - повреждённый, чужой или устаревший токен -> ErrInvalidActivation;
//   - пользователь не найден -> ErrNotFound;
//   - уже активен -> ErrAlreadyActive.
func (s *Service) Activate(ctx context.Context, token string) error {
	const op = "service.users.Activate"

	lg := log.From(ctx).With("op", op)

	email, ok := s.signer.Verify(token, s.cfg.Auth.ActivationTTL, auth.PurposeActivate)
	if !ok {
		lg.Warn("activation token rejected", "token", redact.Token(token))

		return fmt.Errorf("%s: %w", op, ErrInvalidActivation)
	}

	lg = lg.With("email", redact.Email(email))

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user not found")

			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByEmail", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if user.IsActive {
		lg.Warn("already active", "user_id", user.ID.String())

		return fmt.Errorf("%s: %w", op, ErrAlreadyActive)
	}

	activated, err := s.storage.ActivateUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user disappeared during activation")

			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on ActivateUser", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !activated {
		lg.Warn("activated concurrently", "user_id", user.ID.String())

		return fmt.Errorf("%s: %w", op, ErrAlreadyActive)
	}

	lg.Info("user activated", "user_id", user.ID.String())

	return nil
}

// Profile возвращает пользователя по username и признак того,
// что его запрашивает сам владелец (тогда транспорт отдаёт email).
func (s *Service) Profile(ctx context.Context, username string, viewer *uuid.UUID) (*models.User, bool, error) {
	const op = "service.users.Profile"

	user, err := s.userByUsername(ctx, op, username)
	if err != nil {
		return nil, false, err
	}

	return user, viewer != nil && *viewer == user.ID, nil
}

// Me возвращает пользователя по идентификатору из токена.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "service.users.Me"

	return s.userByID(ctx, op, userID)
}

// SetAvatar заменяет аватар пользователя.
//
// Недопустимое расширение или нечитаемое изображение -> *ValidationError по полю avatar.
// Новый файл сохраняется до записи пользователя, старый удаляется после.
func (s *Service) SetAvatar(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*models.User, error) {
	const op = "service.users.SetAvatar"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if !images.Allowed(filename) {
		lg.Warn("file type not allowed", "filename", filename)

		return nil, fmt.Errorf("%s: %w", op, imageError("avatar", images.ErrUnsupportedType))
	}

	user, err := s.userByID(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	name, err := s.saveImage(ctx, storage.FolderAvatars, "avatar", filename, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	old := user.Avatar
	user.Avatar = name

	if err := s.storage.SaveUser(ctx, user); err != nil {
		lg.Error("storage error on SaveUser", "err", err)
		s.removeImage(ctx, storage.FolderAvatars, name)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.removeImage(ctx, storage.FolderAvatars, old)

	lg.Info("avatar updated", "avatar", name)

	return user, nil
}

func (s *Service) userByID(ctx context.Context, op string, id uuid.UUID) (*models.User, error) {
	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Warn("user not found", "op", op, "user_id", id.String())

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("storage error on UserByID", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return user, nil
}

func (s *Service) userByUsername(ctx context.Context, op, username string) (*models.User, error) {
	user, err := s.storage.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.From(ctx).Warn("user not found", "op", op, "username", username)

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("storage error on UserByUsername", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return user, nil
}

// saveImage сохраняет изображение через адаптер и маппит его ошибки.
func (s *Service) saveImage(ctx context.Context, folder, field, filename string, r io.Reader) (string, error) {
	name, err := s.images.Save(ctx, folder, filename, r)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedType) || errors.Is(err, images.ErrInvalidImage) {
			log.From(ctx).Warn("image rejected", "folder", folder, "err", err)

			return "", imageError(field, err)
		}

		log.From(ctx).Error("image upload failed", "folder", folder, "err", err)

		return "", ErrInternal
	}

	return name, nil
}

// removeImage удаляет файл; ошибка только логируется.
func (s *Service) removeImage(ctx context.Context, folder, name string) {
	if err := s.images.Remove(ctx, folder, name); err != nil {
		log.From(ctx).Error("remove image failed", "folder", folder, "name", name, "err", err)
	}
}

// imageError переводит ошибку адаптера изображений в ошибку валидации поля.
func imageError(field string, err error) error {
	v := &ValidationError{}
	if errors.Is(err, images.ErrUnsupportedType) {
		v.add(field, "File type not allowed")
	} else {
		v.add(field, "Not a valid image")
	}

	return v
}
