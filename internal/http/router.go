package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/smilecook/internal/config"
	apierrors "github.com/pribylovaa/smilecook/internal/http/errors"
	"github.com/pribylovaa/smilecook/internal/http/handlers"
	"github.com/pribylovaa/smilecook/internal/http/middleware"
	"github.com/pribylovaa/smilecook/internal/models"
	"github.com/pribylovaa/smilecook/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.

	// Metrics — HTTP-метрики; nil отключает сбор.
	Metrics *middleware.Metrics
	// TokenLimiter ограничивает частоту POST /token; nil отключает ограничение.
	TokenLimiter *middleware.IPRateLimiter

	Limits         config.LimitsConfig
	MaxUploadBytes int64
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, service.ErrNotFound)
	})

	h := handlers.New(svc, opts.Limits, opts.MaxUploadBytes)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc, opts.TokenLimiter)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc, opts.TokenLimiter)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, a middleware.Authenticator, limiter *middleware.IPRateLimiter) {
	access := middleware.RequireAuth(a, models.TokenAccess)
	refresh := middleware.RequireAuth(a, models.TokenRefresh)
	optional := middleware.OptionalAuth(a)

	// tokens
	login := r.With()
	if limiter != nil {
		login = r.With(middleware.RateLimit(limiter))
	}
	login.Post("/token", h.CreateToken)
	r.With(refresh).Post("/refresh", h.RefreshToken)
	r.With(access).Post("/revoke", h.RevokeToken)

	// users
	r.Post("/users", h.CreateUser)
	r.Get("/users/activate/{token}", h.ActivateUser)
	r.With(optional).Get("/users/{username}", h.GetUser)
	r.With(optional).Get("/users/{username}/recipes", h.ListUserRecipes)
	r.With(access).Put("/users/avatar", h.SetAvatar)
	r.With(access).Get("/me", h.GetMe)

	// recipes
	r.Get("/recipes", h.ListRecipes)
	r.With(access).Post("/recipes", h.CreateRecipe)
	r.With(optional).Get("/recipes/{id}", h.GetRecipe)
	r.With(access).Patch("/recipes/{id}", h.UpdateRecipe)
	r.With(access).Delete("/recipes/{id}", h.DeleteRecipe)
	r.With(access).Put("/recipes/{id}/publish", h.PublishRecipe)
	r.With(access).Delete("/recipes/{id}/publish", h.UnpublishRecipe)
	r.With(access).Put("/recipes/{id}/cover", h.SetCover)
}
