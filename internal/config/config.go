package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type S3 struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Prefix        string
	PublicBaseURL string
}

type Config struct {
	HTTPAddr       string
	PostgresDSN    string
	ElasticURL     string
	RedisAddr      string
	AllowedOrigins []string
	JWTSecret      string
	S3             S3

	RenderCacheTTL   time.Duration
	FetchMaxRetries  int
	FetchMaxBytes    int64
	SyncInterval     time.Duration
	DLQRetryInterval time.Duration

	LogLevel  string
	LogFormat string
	Seed      bool
}

// Load reads .env files (when present) and then the process environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		ElasticURL:     os.Getenv("ELASTIC_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		AllowedOrigins: list(env("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		S3: S3{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        env("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			Prefix:        os.Getenv("S3_PREFIX"),
			PublicBaseURL: strings.TrimSuffix(os.Getenv("S3_PUBLIC_BASE_URL"), "/"),
		},
		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.RenderCacheTTL, err = duration("RENDER_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = duration("SYNC_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.DLQRetryInterval, err = duration("DLQ_RETRY_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchMaxRetries, err = integer("FETCH_MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	maxBytes, err := integer("FETCH_MAX_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}
	cfg.FetchMaxBytes = int64(maxBytes)
	if cfg.Seed, err = boolean("SEED", false); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what the server cannot start without.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func integer(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
