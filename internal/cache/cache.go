// cache хранит множество отозванных сессионных токенов (jti).
// Записи живут не дольше оставшегося срока жизни токена:
// после истечения токен отвергается по exp, и запись больше не нужна.
package cache

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../mocks/mock_cache.go -package=mocks github.com/pribylovaa/smilecook/internal/cache Blocklist

// Blocklist — контракт списка отозванных токенов.
// Реализации обязаны быть безопасны для конкурентного использования.
type Blocklist interface {
	// Revoke добавляет jti в список на ttl. ttl <= 0 — no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked сообщает, отозван ли jti.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Close освобождает ресурсы.
	Close() error
}
