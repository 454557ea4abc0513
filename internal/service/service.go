// service содержит бизнес-логику сервиса рецептов:
// вход/обновление/отзыв сессионных токенов, регистрацию и активацию
// пользователей, операции над рецептами с учётом владельца и видимости,
// загрузку аватаров и обложек.
//
// Экземпляр Service не хранит состояние запроса и безопасен для
// конкурентного использования, если безопасны переданные зависимости.
// Ошибки возвращаются как sentinel-значения ниже и маппятся транспортом
// в HTTP-статусы (internal/http/errors).
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/pribylovaa/smilecook/internal/auth"
	"github.com/pribylovaa/smilecook/internal/cache"
	"github.com/pribylovaa/smilecook/internal/config"
	"github.com/pribylovaa/smilecook/internal/images"
	"github.com/pribylovaa/smilecook/internal/mail"
	"github.com/pribylovaa/smilecook/internal/storage"
)

var (
	// ErrInvalidArgument — некорректные входные данные. Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность не найдена. Транспорт: 404.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — username или email уже заняты. Транспорт: 400.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden — действие над чужой сущностью. Транспорт: 403.
	ErrForbidden = errors.New("access is not allowed")
	// ErrInvalidCredentials — неизвестный email или неверный пароль. Транспорт: 401.
	ErrInvalidCredentials = errors.New("username or password is incorrect")
	// ErrInactive — учётная запись ещё не активирована. Транспорт: 403.
	ErrInactive = errors.New("the user account is not activated yet")
	// ErrUnauthorized — токен отсутствует, повреждён, просрочен или другого типа. Транспорт: 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenRevoked — токен отозван. Транспорт: 401.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrInvalidActivation — ссылка активации повреждена или устарела. Транспорт: 400.
	ErrInvalidActivation = errors.New("invalid token or token expired")
	// ErrAlreadyActive — повторная активация. Транспорт: 400.
	ErrAlreadyActive = errors.New("the user account is already activated")
	// ErrInternal — внутренняя ошибка. Транспорт: 500.
	ErrInternal = errors.New("internal")
)

// ValidationError — ошибки валидации по полям.
// errors.Is(err, ErrInvalidArgument) возвращает true.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation errors"
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidArgument }

// add регистрирует сообщение для поля.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}

	e.Fields[field] = append(e.Fields[field], msg)
}

// orNil возвращает nil, если ошибок нет.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

// ConflictError — нарушение уникальности с сообщением для клиента.
// errors.Is(err, ErrAlreadyExists) возвращает true.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// Service описывает бизнес-логику сервиса рецептов.
type Service struct {
	cfg       *config.Config
	storage   storage.Storage
	tokens    *auth.Tokens
	signer    *auth.TimedSigner
	blocklist cache.Blocklist
	mailer    mail.Sender
	images    *images.Uploader
	now       func() time.Time
}

// Deps — зависимости сервиса.
type Deps struct {
	Storage   storage.Storage
	Tokens    *auth.Tokens
	Signer    *auth.TimedSigner
	Blocklist cache.Blocklist
	Mailer    mail.Sender
	Images    *images.Uploader
}

// New создаёт новый экземпляр Service.
func New(cfg *config.Config, deps Deps) *Service {
	return &Service{
		cfg:       cfg,
		storage:   deps.Storage,
		tokens:    deps.Tokens,
		signer:    deps.Signer,
		blocklist: deps.Blocklist,
		mailer:    deps.Mailer,
		images:    deps.Images,
		now:       time.Now,
	}
}

// Изображения по умолчанию, если пользователь ничего не загрузил.
const (
	defaultAvatar = "default-avatar.jpg"
	defaultCover  = "default-recipe-cover.jpg"
)

// AvatarURL возвращает публичный URL аватара (или изображения по умолчанию).
func (s *Service) AvatarURL(name string) string {
	if name == "" {
		return s.images.URL(storage.FolderAssets, defaultAvatar)
	}

	return s.images.URL(storage.FolderAvatars, name)
}

// CoverURL возвращает публичный URL обложки рецепта (или изображения по умолчанию).
func (s *Service) CoverURL(name string) string {
	if name == "" {
		return s.images.URL(storage.FolderAssets, defaultCover)
	}

	return s.images.URL(storage.FolderRecipes, name)
}

// activationLink собирает ссылку активации на внешний адрес сервиса.
func (s *Service) activationLink(token string) string {
	return strings.TrimRight(s.cfg.App.PublicURL, "/") + "/users/activate/" + token
}
