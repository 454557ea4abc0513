// images проверяет тип загружаемых изображений, сжимает их
// и сохраняет в объектное хранилище, заменяя предыдущий файл.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/pribylovaa/smilecook/internal/storage"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedType — расширение файла не входит в список разрешённых.
	ErrUnsupportedType = errors.New("file type not allowed")
	// ErrInvalidImage — содержимое файла не удалось декодировать как изображение.
	ErrInvalidImage = errors.New("invalid image")
)

// allowedExt — разрешённые расширения (без svg).
var allowedExt = map[string]struct{}{
	"jpg": {}, "jpe": {}, "jpeg": {}, "png": {}, "gif": {}, "bmp": {}, "webp": {},
}

// Allowed сообщает, разрешено ли расширение файла.
func Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	_, ok := allowedExt[ext]

	return ok
}

// DefaultMaxPixels — предел площади изображения по умолчанию (~89 Мпикс).
const DefaultMaxPixels = 89478485

// Compressor вписывает изображение в квадрат maxDim и кодирует в JPEG.
type Compressor struct {
	maxDim    int
	quality   int
	maxPixels int64
}

// NewCompressor создаёт компрессор по конфигурации.
func NewCompressor(cfg config.ImagesConfig) *Compressor {
	maxPixels := int64(cfg.MaxPixels)
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	return &Compressor{maxDim: cfg.MaxDimension, quality: cfg.JPEGQuality, maxPixels: maxPixels}
}

// Compress декодирует изображение, уменьшает его (без увеличения)
// с сохранением пропорций и возвращает JPEG.
// Размеры читаются из заголовка до полного декодирования: изображение
// площадью больше maxPixels отклоняется с ErrInvalidImage.
func (c *Compressor) Compress(r io.Reader) ([]byte, error) {
	var head bytes.Buffer

	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > c.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrInvalidImage, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	dst := c.resize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("images.Compress: %w", err)
	}

	return buf.Bytes(), nil
}

func (c *Compressor) resize(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if c.maxDim <= 0 || (w <= c.maxDim && h <= c.maxDim) {
		return src
	}

	nw, nh := c.maxDim, c.maxDim
	if w >= h {
		nh = max(1, h*c.maxDim/w)
	} else {
		nw = max(1, w*c.maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}

// Uploader — адаптер загрузки изображений в папку объектного хранилища.
type Uploader struct {
	store      storage.ImageStorage
	compressor *Compressor
}

// NewUploader создаёт адаптер загрузки.
func NewUploader(store storage.ImageStorage, compressor *Compressor) *Uploader {
	return &Uploader{store: store, compressor: compressor}
}

// Save проверяет расширение, сжимает изображение и сохраняет его под новым
// именем "<uuid>.jpg". Возвращает имя сохранённого файла.
func (u *Uploader) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	const op = "images.Uploader.Save"

	if !Allowed(filename) {
		return "", fmt.Errorf("%s: %w", op, ErrUnsupportedType)
	}

	data, err := u.compressor.Compress(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	name := uuid.NewString() + ".jpg"
	if err := u.store.PutImage(ctx, folder, name, bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return name, nil
}

// Remove удаляет ранее сохранённый файл; пустое имя — no-op.
func (u *Uploader) Remove(ctx context.Context, folder, name string) error {
	if name == "" {
		return nil
	}

	return u.store.DeleteImage(ctx, folder, name)
}

// URL возвращает публичный URL файла.
func (u *Uploader) URL(folder, name string) string {
	return u.store.ImageURL(folder, name)
}
