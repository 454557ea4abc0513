// minio предоставляет реализацию storage.ImageStorage на базе MinIO/S3.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/pribylovaa/smilecook/internal/storage"
)

// ImagesStorage — адаптер MinIO для изображений (аватары и обложки рецептов).
type ImagesStorage struct {
	client     *mclient.Client
	bucket     string
	publicBase string
}

// New создает и инициализирует клиент MinIO.
// Делает endpoint-перенастройку (убирает схему), подбирает Secure по схеме
// и выполняет fail-fast-проверку доступности бакета.
func New(ctx context.Context, cfg config.S3Config) (*ImagesStorage, error) {
	const op = "storage.minio.New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.RootUser, cfg.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &ImagesStorage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func objectKey(folder, name string) string {
	return path.Join(folder, path.Base(name))
}

// PutImage загружает объект в бакет под ключом "<folder>/<name>".
func (s *ImagesStorage) PutImage(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) error {
	const op = "storage.minio.PutImage"

	_, err := s.client.PutObject(ctx, s.bucket, objectKey(folder, name), r, size, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteImage удаляет объект. Отсутствующий ключ не считается ошибкой.
func (s *ImagesStorage) DeleteImage(ctx context.Context, folder, name string) error {
	const op = "storage.minio.DeleteImage"

	err := s.client.RemoveObject(ctx, s.bucket, objectKey(folder, name), mclient.RemoveObjectOptions{})
	if err != nil {
		if errResp := mclient.ToErrorResponse(err); errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ImageURL собирает публичный URL объекта из PublicBaseURL.
func (s *ImagesStorage) ImageURL(folder, name string) string {
	return s.publicBase + "/" + objectKey(folder, name)
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.ImageStorage = (*ImagesStorage)(nil)
