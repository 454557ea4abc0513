package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryBlocklist — in-memory реализация Blocklist для одного процесса.
// Просроченные записи удаляются методом Sweep (см. janitor в cmd).
type MemoryBlocklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryBlocklist создаёт пустой список.
func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *MemoryBlocklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	exp := b.now().Add(ttl)

	b.mu.Lock()
	if cur, ok := b.entries[jti]; !ok || exp.After(cur) {
		b.entries[jti] = exp
	}
	b.mu.Unlock()

	return nil
}

func (b *MemoryBlocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	exp, ok := b.entries[jti]
	b.mu.RUnlock()

	return ok && b.now().Before(exp), nil
}

// Sweep удаляет записи, истёкшие к моменту now, и возвращает их число.
func (b *MemoryBlocklist) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for jti, exp := range b.entries {
		if !now.Before(exp) {
			delete(b.entries, jti)
			removed++
		}
	}

	return removed
}

// Len возвращает текущее число записей.
func (b *MemoryBlocklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries)
}

func (b *MemoryBlocklist) Close() error { return nil }

var _ Blocklist = (*MemoryBlocklist)(nil)
