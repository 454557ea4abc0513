package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/pribylovaa/smilecook/internal/models"
)

type sessionClaims struct {
	Type  string `json:"type"`
	Fresh bool   `json:"fresh"`
	jwt.RegisteredClaims
}

// Tokens выпускает и проверяет сессионные JWT (HS256).
type Tokens struct {
	secret     []byte
	issuer     string
	audience   []string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens создаёт менеджер сессионных токенов из конфигурации.
func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// IssueAccess выпускает access-токен. fresh=true только при входе по паролю.
func (t *Tokens) IssueAccess(userID uuid.UUID, fresh bool) (string, error) {
	return t.issue(userID, models.TokenAccess, fresh, t.accessTTL)
}

// IssueRefresh выпускает refresh-токен.
func (t *Tokens) IssueRefresh(userID uuid.UUID) (string, error) {
	return t.issue(userID, models.TokenRefresh, false, t.refreshTTL)
}

func (t *Tokens) issue(userID uuid.UUID, kind models.TokenKind, fresh bool, ttl time.Duration) (string, error) {
	const op = "auth.Tokens.issue"

	now := t.now().UTC()
	claims := sessionClaims{
		Type:  string(kind),
		Fresh: fresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings(t.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Parse проверяет подпись, срок, издателя, аудиторию и тип токена.
// Проверка отзыва выполняется вызывающей стороной по Claims.JTI.
func (t *Tokens) Parse(token string, kind models.TokenKind) (*models.Claims, error) {
	const op = "auth.Tokens.Parse"

	var claims sessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience...),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if models.TokenKind(claims.Type) != kind {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return &models.Claims{
		UserID:    uid,
		JTI:       claims.ID,
		Kind:      kind,
		Fresh:     claims.Fresh,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
