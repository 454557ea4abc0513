package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind — тип сессионного токена.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims — проверенное содержимое сессионного токена.
type Claims struct {
	UserID    uuid.UUID
	JTI       string
	Kind      TokenKind
	Fresh     bool
	ExpiresAt time.Time
}

// TokenPair — пара токенов, выдаваемая при входе.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
