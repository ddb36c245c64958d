package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	AppName       string `validate:"required"`
	Environment   string `validate:"required,oneof=development staging production test"`
	HTTPPort      string `validate:"required"`
	PublicBaseURL string `validate:"omitempty,url"`
	BodyLimit     int    `validate:"gte=0"`
	CORSOrigins   []string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32 `validate:"gte=0"`
	PoolMinConns          int32 `validate:"gte=0"`
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	RunMigrations bool
	RunSeeders    bool
	MigrationsDir string
}

type JWTConfig struct {
	Secret    string        `validate:"required"`
	ExpiresIn time.Duration `validate:"gt=0"`
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type StorageConfig struct {
	Driver              string `validate:"oneof=local minio"`
	UploadDir           string
	MaxPictureBytes     int64    `validate:"gt=0"`
	AllowedContentTypes []string `validate:"min=1,dive,required"`
	JanitorWorkers      int      `validate:"gte=1"`

	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicBaseURL string
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error dpanic panic fatal"`
	Format string `validate:"oneof=json console"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `validate:"gte=0"`
	AuthBurst int     `validate:"gte=0"`
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

const defaultMaxPictureBytes = 5 * 1024 * 1024

func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function so tests can avoid
// touching the process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return def
		}
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int64) int64 {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return n
	}
	flag := func(key string, def bool) bool {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return b
	}
	float := func(key string, def float64) float64 {
		raw := opt(key, "")
		if raw == "" {
			return def
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return f
	}

	cfg.App = AppConfig{
		AppName:       opt("APP_NAME", "devhub"),
		Environment:   opt("APP_ENV", "development"),
		HTTPPort:      req("HTTP_PORT"),
		PublicBaseURL: strings.TrimRight(opt("PUBLIC_BASE_URL", ""), "/"),
		BodyLimit:     int(num("HTTP_BODY_LIMIT", 10*1024*1024)),
		CORSOrigins:   splitList(opt("CORS_ALLOW_ORIGINS", "*")),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     req("DB_HOST"),
		DBPort:     opt("DB_PORT", "5432"),
		DBName:     req("DB_NAME"),
		DBUser:     req("DB_USER"),
		DBPassword: opt("DB_PASSWORD", ""),
		DBSSLMode:  opt("DB_SSL_MODE", "disable"),

		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(num("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(num("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),

		RunMigrations: flag("DB_RUN_MIGRATIONS", true),
		RunSeeders:    flag("DB_RUN_SEEDERS", false),
		MigrationsDir: opt("DB_MIGRATIONS_DIR", "migrations"),
	}

	cfg.JWT = JWTConfig{
		Secret:    req("JWT_SECRET"),
		ExpiresIn: dur("JWT_EXPIRES_IN", 24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD", ""),
		TTL:      dur("REDIS_TTL", 10*time.Minute),
	}

	cfg.Storage = StorageConfig{
		Driver:              strings.ToLower(opt("STORAGE_DRIVER", "local")),
		UploadDir:           opt("UPLOAD_DIR", "uploads/profiles"),
		MaxPictureBytes:     num("UPLOAD_MAX_BYTES", defaultMaxPictureBytes),
		AllowedContentTypes: splitList(opt("UPLOAD_ALLOWED_TYPES", "image/jpeg,image/png,image/gif,image/webp")),
		JanitorWorkers:      int(num("UPLOAD_JANITOR_WORKERS", 2)),

		S3Endpoint:      opt("S3_ENDPOINT", ""),
		S3AccessKey:     opt("S3_ACCESS_KEY", ""),
		S3SecretKey:     opt("S3_SECRET_KEY", ""),
		S3Bucket:        opt("S3_BUCKET", ""),
		S3PublicBaseURL: strings.TrimRight(opt("S3_PUBLIC_BASE_URL", ""), "/"),
	}
	if cfg.Storage.Driver == "minio" {
		req("S3_ENDPOINT")
		req("S3_BUCKET")
	}

	cfg.Log = LogConfig{
		Level:  strings.ToLower(opt("LOG_LEVEL", "info")),
		Format: strings.ToLower(opt("LOG_FORMAT", "json")),
	}

	cfg.RateLimit = RateLimitConfig{
		AuthRPS:   float("AUTH_RATE_LIMIT_RPS", 5),
		AuthBurst: int(num("AUTH_RATE_LIMIT_BURST", 10)),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errInvalidEnv, err)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
