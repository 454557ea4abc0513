// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	App       AppConfig       `yaml:"app"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Redis     RedisConfig     `yaml:"redis"`
	S3        S3Config        `yaml:"s3"`
	Images    ImagesConfig    `yaml:"images"`
	Mail      MailConfig      `yaml:"mail"`
	Limits    LimitsConfig    `yaml:"limits"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AppConfig — внешний адрес сервиса (используется в ссылках из писем).
type AppConfig struct {
	PublicURL string `yaml:"public_url" env:"APP_PUBLIC_URL" env-default:"http://localhost:8080"`
}

// AuthConfig содержит параметры выпуска и валидации токенов.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	ActivationTTL   time.Duration `yaml:"activation_ttl" env:"ACTIVATION_TTL" env-default:"30m"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"smilecook"`
	Audience        []string      `yaml:"audience" env:"AUDIENCE" env-default:"smilecook-api"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL    string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"DB_MIGRATE_ON_START" env-default:"false"`
}

// RedisConfig — настройки Redis для списка отозванных токенов.
// Пустой URL означает in-memory реализацию.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"smilecook:revoked:"`
}

// S3Config — параметры подключения к MinIO/S3.
type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	RootUser      string `yaml:"root_user" env:"S3_ROOT_USER"`
	RootPassword  string `yaml:"root_password" env:"S3_ROOT_PASSWORD"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET" env-default:"images"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL" env-default:"http://localhost:9000/images"`
}

// ImagesConfig — ограничения на загрузку и параметры сжатия изображений.
type ImagesConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"IMAGES_MAX_UPLOAD_BYTES" env-default:"10485760"`
	MaxDimension   int   `yaml:"max_dimension" env:"IMAGES_MAX_DIMENSION" env-default:"1600"`
	JPEGQuality    int   `yaml:"jpeg_quality" env:"IMAGES_JPEG_QUALITY" env-default:"85"`
	MaxPixels      int   `yaml:"max_pixels" env:"IMAGES_MAX_PIXELS" env-default:"89478485"`
}

// MailConfig — параметры отправки писем через SendGrid.
// Пустой APIKey переключает сервис на логирующий отправитель.
type MailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"SmileCook"`
	FromAddress    string `yaml:"from_address" env:"MAIL_FROM_ADDRESS" env-default:"no-reply@smilecook.local"`
}

// LimitsConfig — размеры страниц для списков рецептов.
type LimitsConfig struct {
	DefaultPerPage     int `yaml:"default_per_page" env:"LIMITS_DEFAULT_PER_PAGE" env-default:"20"`
	UserDefaultPerPage int `yaml:"user_default_per_page" env:"LIMITS_USER_DEFAULT_PER_PAGE" env-default:"10"`
	MaxPerPage         int `yaml:"max_per_page" env:"LIMITS_MAX_PER_PAGE" env-default:"100"`
}

// RateLimitConfig — ограничение частоты запросов к POST /token (на IP).
type RateLimitConfig struct {
	TokenRPS   float64 `yaml:"token_rps" env:"RATE_LIMIT_TOKEN_RPS" env-default:"1"`
	TokenBurst int     `yaml:"token_burst" env:"RATE_LIMIT_TOKEN_BURST" env-default:"5"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла поверх значений из YAML накладываются ENV-переменные.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
