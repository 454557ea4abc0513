// models содержит доменные сущности сервиса рецептов.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — зарегистрированный пользователь.
// PasswordHash никогда не содержит открытый пароль.
// Avatar — имя файла в папке avatars/, пустая строка означает отсутствие аватара.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Author — публичная сводка о владельце рецепта.
type Author struct {
	ID        uuid.UUID
	Username  string
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthorOf возвращает публичную сводку пользователя.
func AuthorOf(u *User) *Author {
	return &Author{
		ID:        u.ID,
		Username:  u.Username,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
