package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/smilecook/internal/config"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/service"
)

// Handlers агрегирует зависимости HTTP-обработчиков.
type Handlers struct {
	svc       *service.Service
	limits    config.LimitsConfig
	maxUpload int64
}

// New создаёт обработчики. maxUpload — предельный размер тела запроса
// с изображением в байтах.
func New(svc *service.Service, limits config.LimitsConfig, maxUpload int64) *Handlers {
	return &Handlers{svc: svc, limits: limits, maxUpload: maxUpload}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrMalformedBody, err)
	}

	return nil
}

// pathID разбирает UUID из параметра пути.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", apierrors.ErrBadParam, name)
	}

	return id, nil
}

// requestURL восстанавливает абсолютный URL текущего запроса
// для навигационных ссылок пагинации.
func requestURL(r *http.Request) *url.URL {
	u := *r.URL

	u.Scheme = "http"
	if r.TLS != nil {
		u.Scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		u.Scheme = p
	}
	u.Host = r.Host

	return &u
}

// formFile читает файл из multipart-формы с ограничением размера тела.
// Вызывающий обязан закрыть файл.
func (h *Handlers) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("%w: limit %d bytes", apierrors.ErrTooLarge, tooLarge.Limit)
		}

		return nil, nil, fmt.Errorf("%w: %v", apierrors.ErrMissingFile, err)
	}

	return file, header, nil
}
