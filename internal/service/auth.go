package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/smilecook/internal/auth"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/pkg/log"
	"github.com/pribylovaa/smilecook/internal/pkg/redact"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// Login выполняет вход по email и паролю.
//
// Поведение:
//   - неизвестный email или неверный пароль -> ErrInvalidCredentials;
//   - неактивированная учётная запись -> ErrInactive (проверяется после пароля,
//     чтобы не раскрывать статус чужих учётных записей);
//   - выдаёт fresh access-токен и refresh-токен.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "service.auth.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	if email == "" || password == "" {
		lg.Warn("empty credentials")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("unknown email")

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("storage error on UserByEmail", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		lg.Warn("wrong password", "user_id", user.ID.String())

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.IsActive {
		lg.Warn("inactive account", "user_id", user.ID.String())

		return nil, fmt.Errorf("%s: %w", op, ErrInactive)
	}

	access, err := s.tokens.IssueAccess(user.ID, true)
	if err != nil {
		lg.Error("issue access token failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	refresh, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		lg.Error("issue refresh token failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user logged in", "user_id", user.ID.String())

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate проверяет сессионный токен нужного типа и его отсутствие в списке отозванных.
//
// Любая проблема с самим токеном (подпись, срок, тип, издатель) -> ErrUnauthorized,
// отозванный jti -> ErrTokenRevoked, сбой списка отзыва -> ErrInternal.
func (s *Service) Authenticate(ctx context.Context, token string, kind models.TokenKind) (*models.Claims, error) {
	const op = "service.auth.Authenticate"

	lg := log.From(ctx).With("op", op, "kind", string(kind))

	claims, err := s.tokens.Parse(token, kind)
	if err != nil {
		lg.Warn("token rejected", "token", redact.Token(token), "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.JTI)
	if err != nil {
		lg.Error("blocklist lookup failed", "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if revoked {
		lg.Warn("revoked token used", "user_id", claims.UserID.String())

		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return claims, nil
}

// Refresh выдаёт новый access-токен по проверенному refresh-токену.
// Новый токен всегда не fresh.
func (s *Service) Refresh(ctx context.Context, claims *models.Claims) (string, error) {
	const op = "service.auth.Refresh"

	lg := log.From(ctx).With("op", op, "user_id", claims.UserID.String())

	if claims.Kind != models.TokenRefresh {
		lg.Warn("refresh called with non-refresh claims")

		return "", fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	access, err := s.tokens.IssueAccess(claims.UserID, false)
	if err != nil {
		lg.Error("issue access token failed", "err", err)

		return "", fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return access, nil
}

// Revoke добавляет jti токена в список отозванных до его естественного истечения.
func (s *Service) Revoke(ctx context.Context, claims *models.Claims) error {
	const op = "service.auth.Revoke"

	lg := log.From(ctx).With("op", op, "user_id", claims.UserID.String())

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		lg.Debug("token already expired, nothing to revoke")

		return nil
	}

	if err := s.blocklist.Revoke(ctx, claims.JTI, ttl); err != nil {
		lg.Error("blocklist revoke failed", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("token revoked", "ttl", ttl.String())

	return nil
}
