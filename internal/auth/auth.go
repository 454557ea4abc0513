// auth отвечает за криптографию учётных данных:
// хэширование паролей (PBKDF2-SHA256), подписанные временные токены
// (подтверждение e-mail) и сессионные JWT (access/refresh).
//
// Пакет не хранит состояния запросов; все типы безопасны для
// конкурентного использования после создания.
package auth

import "errors"

var (
	// ErrInvalidToken — токен повреждён, подписан чужим ключом или не проходит проверку claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongTokenType — предъявлен токен другого типа (refresh вместо access и наоборот).
	ErrWrongTokenType = errors.New("wrong token type")
)
