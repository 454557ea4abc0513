package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// passwordScheme — идентификатор схемы в modular-crypt строке.
	passwordScheme = "pbkdf2-sha256"
	// DefaultIterations — число итераций PBKDF2 для новых хэшей.
	DefaultIterations = 29000

	saltLen = 16
	keyLen  = 32
)

// ab64 — base64 без паддинга с '.' вместо '+' (формат passlib).
var ab64 = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./").WithPadding(base64.NoPadding)

// HashPassword возвращает строку вида $pbkdf2-sha256$<iter>$<salt>$<key>
// со случайной солью.
func HashPassword(plain string) (string, error) {
	const op = "auth.HashPassword"

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return encodeHash(plain, salt, DefaultIterations), nil
}

// CheckPassword пересчитывает ключ с солью и числом итераций из hash
// и сравнивает за постоянное время. Повреждённый hash даёт false.
func CheckPassword(plain, hash string) bool {
	iter, salt, want, ok := parseHash(hash)
	if !ok {
		return false
	}

	got := pbkdf2.Key([]byte(plain), salt, iter, len(want), sha256.New)

	return subtle.ConstantTimeCompare(got, want) == 1
}

func encodeHash(plain string, salt []byte, iter int) string {
	key := pbkdf2.Key([]byte(plain), salt, iter, keyLen, sha256.New)

	return fmt.Sprintf("$%s$%d$%s$%s", passwordScheme, iter, ab64.EncodeToString(salt), ab64.EncodeToString(key))
}

func parseHash(hash string) (iter int, salt, key []byte, ok bool) {
	// "", scheme, iter, salt, key
	parts := strings.Split(hash, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != passwordScheme {
		return 0, nil, nil, false
	}

	iter, err := strconv.Atoi(parts[2])
	if err != nil || iter <= 0 {
		return 0, nil, nil, false
	}

	salt, err = ab64.DecodeString(parts[3])
	if err != nil {
		return 0, nil, nil, false
	}

	key, err = ab64.DecodeString(parts[4])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return iter, salt, key, true
}
