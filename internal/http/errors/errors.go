// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя (или локальную ошибку транспорта),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий машиночитаемый code и безопасное message;
//   - ошибки по полям для ошибок валидации.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/smilecook/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// Ошибки транспорта, которые не порождает сервисный слой.
var (
	// ErrMalformedBody — тело запроса не разбирается как ожидаемый JSON.
	ErrMalformedBody = stderrors.New("malformed request body")
	// ErrBadParam — некорректный параметр пути.
	ErrBadParam = stderrors.New("bad path parameter")
	// ErrMissingFile — в multipart-форме нет файла.
	ErrMissingFile = stderrors.New("not a valid image")
	// ErrTooLarge — тело запроса превышает лимит.
	ErrTooLarge = stderrors.New("request body too large")
	// ErrRateLimited — превышен лимит частоты запросов.
	ErrRateLimited = stderrors.New("too many requests")
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
// Fields — сообщения по полям для ошибок валидации.
type APIError struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	RequestID string              `json:"request_id,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal;
//   - ValidationError -> 400 с ошибками по полям;
//   - ConflictError -> 400 с сообщением о занятом поле;
//   - прочие sentinel-ошибки сервиса маппятся таблицей ниже;
//   - всё неизвестное -> 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	var verr *service.ValidationError
	if stderrors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Error: APIError{
			Code:    "invalid_argument",
			Message: "Validation errors",
			Fields:  verr.Fields,
		}}
	}

	var conflict *service.ConflictError
	if stderrors.As(err, &conflict) {
		return http.StatusBadRequest, ErrorResponse{Error: APIError{
			Code:    "already_exists",
			Message: conflict.Message,
		}}
	}

	status, code, msg := base(err)

	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// base — таблица маппинга ошибок сервиса и транспорта:
//   - InvalidArgument / AlreadyExists / InvalidActivation / AlreadyActive -> 400
//   - InvalidCredentials / Unauthorized / TokenRevoked -> 401
//   - Forbidden / Inactive -> 403
//   - NotFound -> 404
//   - TooLarge -> 413
//   - RateLimited -> 429
//   - context.Canceled -> 499
//   - context.DeadlineExceeded -> 504
//   - прочее -> 500/internal
func base(err error) (int, string, string) {
	switch {
	case stderrors.Is(err, ErrMalformedBody), stderrors.Is(err, ErrBadParam):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, ErrMissingFile):
		return http.StatusBadRequest, "invalid_argument", "Not a valid image"
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, service.ErrAlreadyExists):
		return http.StatusBadRequest, "already_exists", "already exists"
	case stderrors.Is(err, service.ErrInvalidActivation):
		return http.StatusBadRequest, "invalid_token", "Invalid token or token expired"
	case stderrors.Is(err, service.ErrAlreadyActive):
		return http.StatusBadRequest, "already_active", "The user account is already activated"
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "username or password is incorrect"
	case stderrors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, "token_revoked", "Token has been revoked"
	case stderrors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthenticated", "Missing or invalid token"
	case stderrors.Is(err, service.ErrInactive):
		return http.StatusForbidden, "inactive", "The user account is not activated yet"
	case stderrors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "permission_denied", "Access is not allowed"
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case stderrors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", "request body too large"
	case stderrors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "resource_exhausted", "too many requests"
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
