package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/models"
	logctx "github.com/pribylovaa/smilecook/internal/pkg/log"
	"github.com/pribylovaa/smilecook/internal/service"
)

// Authenticator проверяет сессионный токен заданного типа.
// Реализуется service.Service.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, kind models.TokenKind) (*models.Claims, error)
}

type claimsKey struct{}

// RequireAuth пропускает запрос только с действительным Bearer-токеном типа kind.
// Отсутствующий или недействительный токен -> 401.
func RequireAuth(a Authenticator, kind models.TokenKind) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, service.ErrUnauthorized)
				return
			}

			claims, err := a.Authenticate(r.Context(), token, kind)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth распознаёт access-токен, если он передан.
// Без заголовка Authorization запрос идёт дальше анонимно;
// переданный, но недействительный токен -> 401.
func OptionalAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				apierrors.WriteError(w, r, service.ErrUnauthorized)
				return
			}

			claims, err := a.Authenticate(r.Context(), token, models.TokenAccess)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFrom возвращает проверенные claims из контекста.
func ClaimsFrom(ctx context.Context) (*models.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*models.Claims)

	return c, ok && c != nil
}

// UserIDFrom возвращает идентификатор аутентифицированного пользователя или nil.
func UserIDFrom(ctx context.Context) *uuid.UUID {
	c, ok := ClaimsFrom(ctx)
	if !ok {
		return nil
	}

	id := c.UserID

	return &id
}

func withClaims(ctx context.Context, c *models.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey{}, c)

	return logctx.With(ctx, "user_id", c.UserID.String())
}

// bearerToken извлекает токен из "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(auth[len(prefix):])

	return token, token != ""
}
