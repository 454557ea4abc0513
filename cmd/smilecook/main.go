package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/smilecook/internal/auth"
	"github.com/pribylovaa/smilecook/internal/cache"
	"github.com/pribylovaa/smilecook/internal/config"
	httpapi "github.com/pribylovaa/smilecook/internal/http"
	"github.com/pribylovaa/smilecook/internal/http/middleware"
	"github.com/pribylovaa/smilecook/internal/images"
	"github.com/pribylovaa/smilecook/internal/mail"
	"github.com/pribylovaa/smilecook/internal/migrate"
	"github.com/pribylovaa/smilecook/internal/service"
	"github.com/pribylovaa/smilecook/internal/storage/minio"
	"github.com/pribylovaa/smilecook/internal/storage/postgres"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// janitorInterval — период очистки in-memory списка отозванных токенов и лимитеров.
const janitorInterval = time.Minute

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting smilecook", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	if cfg.DB.MigrateOnStart {
		migrateCtx, migrateCancel := context.WithTimeout(rootCtx, 30*time.Second)
		err := migrate.Up(migrateCtx, cfg.DB.DatabaseURL)
		migrateCancel()
		if err != nil {
			log.Error("migrations_failed", slog.String("err", err.Error()))
			rootCancel()
			os.Exit(1)
		}
		log.Info("migrations_applied")
	}

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	s3Ctx, s3Cancel := context.WithTimeout(rootCtx, 10*time.Second)
	imagesStore, err := minio.New(s3Ctx, cfg.S3)
	s3Cancel()
	if err != nil {
		log.Error("minio_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		store.Close()
		os.Exit(1)
	}
	log.Info("minio_connected")

	var (
		blocklist cache.Blocklist
		memory    *cache.MemoryBlocklist
	)
	if cfg.Redis.RedisURL != "" {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 10*time.Second)
		blocklist, err = cache.NewRedisBlocklist(redisCtx, cfg.Redis.RedisURL, cfg.Redis.Prefix)
		redisCancel()
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			store.Close()
			os.Exit(1)
		}
		log.Info("redis_connected")
	} else {
		memory = cache.NewMemoryBlocklist()
		blocklist = memory
		log.Info("blocklist_in_memory")
	}

	var mailer mail.Sender = mail.LogSender{}
	if cfg.Mail.SendGridAPIKey != "" {
		mailer = mail.NewSendGridSender(cfg.Mail)
		log.Info("mail_sendgrid_enabled")
	} else {
		log.Warn("mail_log_only", slog.String("reason", "sendgrid api key is empty"))
	}

	svc := service.New(cfg, service.Deps{
		Storage:   store,
		Tokens:    auth.NewTokens(cfg.Auth),
		Signer:    auth.NewTimedSigner(cfg.Auth.JWTSecret),
		Blocklist: blocklist,
		Mailer:    mailer,
		Images:    images.NewUploader(imagesStore, images.NewCompressor(cfg.Images)),
	})
	log.Info("service_initialized")

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.TokenRPS, cfg.RateLimit.TokenBurst)

	go janitor(rootCtx, log, memory, limiter)

	api := httpapi.NewRouter(svc, httpapi.Options{
		Logger:         log,
		Timeout:        cfg.Timeouts.Service,
		Metrics:        middleware.NewMetrics(prometheus.DefaultRegisterer),
		TokenLimiter:   limiter,
		Limits:         cfg.Limits,
		MaxUploadBytes: cfg.Images.MaxUploadBytes,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	} else {
		log.Info("http_stopped")
	}
	shutdownCancel()

	rootCancel()
	if err := blocklist.Close(); err != nil {
		log.Warn("blocklist_close_failed", slog.String("err", err.Error()))
	}
	store.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// janitor периодически удаляет истёкшие записи in-memory списка отозванных
// токенов (если он используется) и простаивающие лимитеры клиентов.
func janitor(ctx context.Context, log *slog.Logger, memory *cache.MemoryBlocklist, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			revoked := 0
			if memory != nil {
				revoked = memory.Sweep(now)
			}
			visitors := limiter.Sweep()

			if revoked > 0 || visitors > 0 {
				log.Debug("janitor_sweep", "revoked_evicted", revoked, "visitors_evicted", visitors)
			}
		}
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
