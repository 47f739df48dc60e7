package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"` // サーバーポート
	GoEnv    string `env:"GO_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	FEURL    string `env:"FE_URL" envDefault:"http://localhost:5173"` // CORS

	Postgres PostgresConfig

	JWTSecret      string        `env:"JWT_SECRET"` // JWT署名シークレット
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`

	// 表示用の固定レート（USD→VES）
	BCVRate decimal.Decimal `env:"BCV_RATE" envDefault:"45.00"`
	// 出品者ごとの配送料
	DeliveryFeeUSD decimal.Decimal `env:"DELIVERY_FEE_USD" envDefault:"5.00"`

	ProfileRetry ProfileRetryConfig
	Storage      StorageConfig
	Gemini       GeminiConfig
	Redis        RedisConfig
	Rabbit       RabbitConfig
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"` // あれば最優先
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	DB       string `env:"POSTGRES_DB"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

// プロフィール作成待ちのリトライ
type ProfileRetryConfig struct {
	Attempts int           `env:"PROFILE_RETRY_ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"PROFILE_RETRY_DELAY" envDefault:"2s"`
}

// S3互換ストレージ。Endpoint が空ならアップロードは無効。
type StorageConfig struct {
	Endpoint      string `env:"STORAGE_ENDPOINT"`
	AccessKey     string `env:"STORAGE_ACCESS_KEY"`
	SecretKey     string `env:"STORAGE_SECRET_KEY"`
	Region        string `env:"STORAGE_REGION"`
	Bucket        string `env:"STORAGE_BUCKET" envDefault:"images"`
	UseSSL        bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"GEMINI_API_KEY"`
	Model  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
}

type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	DescriptionTTL time.Duration `env:"DESCRIPTION_CACHE_TTL" envDefault:"24h"`
}

type RabbitConfig struct {
	URL      string `env:"RABBIT_URL"`
	Exchange string `env:"RABBIT_EXCHANGE" envDefault:"marketplace.events"`
}

// Loadは環境変数
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	//必須チェック
	if cfg.Postgres.URL == "" {
		if cfg.Postgres.User == "" {
			return Config{}, fmt.Errorf("POSTGRES_USER is required (or DATABASE_URL)")
		}
		if cfg.Postgres.DB == "" {
			return Config{}, fmt.Errorf("POSTGRES_DB is required (or DATABASE_URL)")
		}
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if !cfg.BCVRate.IsPositive() {
		return Config{}, fmt.Errorf("BCV_RATE must be positive")
	}
	if cfg.DeliveryFeeUSD.IsNegative() {
		return Config{}, fmt.Errorf("DELIVERY_FEE_USD must be >= 0")
	}
	if cfg.ProfileRetry.Attempts < 1 {
		return Config{}, fmt.Errorf("PROFILE_RETRY_ATTEMPTS must be >= 1")
	}
	if cfg.Storage.Endpoint != "" && cfg.Storage.PublicBaseURL == "" {
		scheme := "http"
		if cfg.Storage.UseSSL {
			scheme = "https"
		}
		cfg.Storage.PublicBaseURL = scheme + "://" + cfg.Storage.Endpoint
	}

	return cfg, nil
}

// Addrはecho用の listen アドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// DSN は DATABASE_URL か POSTGRES_* から組み立てる
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}
