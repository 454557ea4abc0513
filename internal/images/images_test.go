package images

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/pribylovaa/smilecook/internal/mocks"
	"github.com/pribylovaa/smilecook/internal/storage"
	"github.com/stretchr/testify/require"
)

func testCompressor() *Compressor {
	return NewCompressor(config.ImagesConfig{MaxDimension: 100, JPEGQuality: 85})
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.jpg", "a.JPEG", "b.jpe", "c.png", "d.gif", "e.bmp", "f.webp"} {
		require.True(t, Allowed(name), name)
	}
	for _, name := range []string{"a.svg", "a.txt", "noext", "a.jpg.exe", ""} {
		require.False(t, Allowed(name), name)
	}
}

func TestCompress_DownscalesKeepingAspect(t *testing.T) {
	t.Parallel()

	out, err := testCompressor().Compress(bytes.NewReader(pngOf(t, 400, 200)))
	require.NoError(t, err)

	b := decodeJPEG(t, out).Bounds()
	require.Equal(t, 100, b.Dx())
	require.Equal(t, 50, b.Dy())
}

func TestCompress_Portrait(t *testing.T) {
	t.Parallel()

	out, err := testCompressor().Compress(bytes.NewReader(pngOf(t, 50, 200)))
	require.NoError(t, err)

	b := decodeJPEG(t, out).Bounds()
	require.Equal(t, 25, b.Dx())
	require.Equal(t, 100, b.Dy())
}

func TestCompress_SmallImageNotUpscaled(t *testing.T) {
	t.Parallel()

	out, err := testCompressor().Compress(bytes.NewReader(pngOf(t, 40, 30)))
	require.NoError(t, err)

	b := decodeJPEG(t, out).Bounds()
	require.Equal(t, 40, b.Dx())
	require.Equal(t, 30, b.Dy())
}

func TestCompress_Garbage(t *testing.T) {
	t.Parallel()

	_, err := testCompressor().Compress(strings.NewReader("definitely not an image"))
	require.ErrorIs(t, err, ErrInvalidImage)
}

// withHeaderSize переписывает размеры в IHDR-чанке PNG без изменения
// данных пикселей и пересчитывает CRC чанка.
func withHeaderSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))

	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))

	return out
}

func TestCompress_OversizedHeaderRejected(t *testing.T) {
	t.Parallel()

	bomb := withHeaderSize(t, pngOf(t, 1, 1), 50000, 50000)

	_, err := testCompressor().Compress(bytes.NewReader(bomb))
	require.ErrorIs(t, err, ErrInvalidImage)
	require.Contains(t, err.Error(), "50000x50000")
}

func TestCompress_PixelLimit(t *testing.T) {
	t.Parallel()

	c := NewCompressor(config.ImagesConfig{MaxDimension: 100, JPEGQuality: 85, MaxPixels: 100})

	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{name: "at_limit", w: 10, h: 10},
		{name: "over_limit", w: 11, h: 10, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := c.Compress(bytes.NewReader(pngOf(t, tt.w, tt.h)))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)

			b := decodeJPEG(t, out).Bounds()
			require.Equal(t, tt.w, b.Dx())
			require.Equal(t, tt.h, b.Dy())
		})
	}
}

func TestUploader_Save_OK(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockImageStorage(ctrl)
	u := NewUploader(store, testCompressor())

	var storedName string
	store.EXPECT().
		PutImage(gomock.Any(), storage.FolderAvatars, gomock.Any(), gomock.Any(), gomock.Any(), "image/jpeg").
		DoAndReturn(func(_ context.Context, _, name string, r io.Reader, size int64, _ string) error {
			storedName = name
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.EqualValues(t, len(data), size)
			decodeJPEG(t, data)
			return nil
		})

	name, err := u.Save(context.Background(), storage.FolderAvatars, "me.png", bytes.NewReader(pngOf(t, 10, 10)))
	require.NoError(t, err)
	require.Equal(t, storedName, name)
	require.True(t, strings.HasSuffix(name, ".jpg"))
	require.Len(t, name, 36+len(".jpg"))
}

func TestUploader_Save_RejectsExtension(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockImageStorage(ctrl)
	u := NewUploader(store, testCompressor())

	_, err := u.Save(context.Background(), storage.FolderRecipes, "evil.svg", strings.NewReader("<svg/>"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUploader_Save_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockImageStorage(ctrl)
	u := NewUploader(store, testCompressor())

	store.EXPECT().PutImage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("s3 down"))

	_, err := u.Save(context.Background(), storage.FolderRecipes, "a.png", bytes.NewReader(pngOf(t, 5, 5)))
	require.Error(t, err)
	require.Contains(t, err.Error(), "s3 down")
}

func TestUploader_Remove(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockImageStorage(ctrl)
	u := NewUploader(store, testCompressor())

	require.NoError(t, u.Remove(context.Background(), storage.FolderAvatars, ""))

	store.EXPECT().DeleteImage(gomock.Any(), storage.FolderAvatars, "old.jpg").Return(nil)
	require.NoError(t, u.Remove(context.Background(), storage.FolderAvatars, "old.jpg"))
}
