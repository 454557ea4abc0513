package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeActivate — назначение токенов подтверждения e-mail.
const PurposeActivate = "activate"

type timedClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// TimedSigner выпускает и проверяет подписанные токены с временем выпуска.
// Назначение (purpose) подмешивается в ключ подписи и передаётся как aud,
// поэтому токен одного назначения не принимается для другого.
type TimedSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTimedSigner создаёт подписчик на общем секрете сервиса.
func NewTimedSigner(secret string) *TimedSigner {
	return &TimedSigner{secret: []byte(secret), now: time.Now}
}

func (s *TimedSigner) key(purpose string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("timed:" + purpose))

	return mac.Sum(nil)
}

// Issue подписывает payload для заданного назначения.
func (s *TimedSigner) Issue(payload, purpose string) (string, error) {
	claims := timedClaims{
		Data: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
			Audience: jwt.ClaimStrings{purpose},
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key(purpose))
}

// Verify возвращает payload и true, если подпись верна, назначение совпадает
// и с момента выпуска прошло не больше maxAge. Любая иная ситуация даёт false.
func (s *TimedSigner) Verify(token string, maxAge time.Duration, purpose string) (string, bool) {
	var claims timedClaims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.key(purpose), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(purpose),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.IssuedAt == nil {
		return "", false
	}

	if s.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", false
	}

	return claims.Data, true
}
