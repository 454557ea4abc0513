package storage

import (
	"context"
	"io"
)

// Папки объектного хранилища для изображений.
const (
	FolderAvatars = "avatars"
	FolderRecipes = "recipes"
	// FolderAssets — статические изображения по умолчанию (загружаются вручную).
	FolderAssets = "assets"
)

// ImageStorage — контракт объектного хранилища изображений.
// Объект адресуется парой (папка, имя файла); ключ в бакете — "<folder>/<name>".
type ImageStorage interface {
	// PutImage сохраняет объект.
	PutImage(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) error
	// DeleteImage удаляет объект; отсутствие объекта не является ошибкой.
	DeleteImage(ctx context.Context, folder, name string) error
	// ImageURL возвращает публичный URL объекта.
	ImageURL(folder, name string) string
}
