package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func baseEnv() map[string]string {
	return map[string]string{
		"HTTP_PORT":   "8080",
		"DB_HOST":     "localhost",
		"DB_NAME":     "devhub",
		"DB_USER":     "devhub",
		"JWT_SECRET":  "secret",
		"UPLOAD_DIR":  "/tmp/uploads",
		"LOG_FORMAT":  "console",
		"REDIS_TTL":   "30s",
		"APP_ENV":     "test",
		"DB_SSL_MODE": "",
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envFrom(baseEnv()))
	require.NoError(t, err)

	require.Equal(t, "devhub", cfg.App.AppName)
	require.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	require.Equal(t, "disable", cfg.Database.DBSSLMode)
	require.Equal(t, 24*time.Hour, cfg.JWT.ExpiresIn)
	require.Equal(t, 30*time.Second, cfg.Redis.TTL)
	require.Equal(t, int64(5*1024*1024), cfg.Storage.MaxPictureBytes)
	require.Equal(t, "local", cfg.Storage.Driver)
	require.Equal(t, []string{"image/jpeg", "image/png", "image/gif", "image/webp"}, cfg.Storage.AllowedContentTypes)
	require.True(t, cfg.Database.RunMigrations)
	require.False(t, cfg.Database.RunSeeders)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	env := baseEnv()
	delete(env, "JWT_SECRET")
	delete(env, "DB_HOST")

	_, err := FromEnv(envFrom(env))
	require.Error(t, err)
	require.True(t, errors.Is(err, errMissingRequiredEnv))
	require.Contains(t, err.Error(), "JWT_SECRET")
	require.Contains(t, err.Error(), "DB_HOST")
}

func TestFromEnv_InvalidValues(t *testing.T) {
	env := baseEnv()
	env["JWT_EXPIRES_IN"] = "tomorrow"

	_, err := FromEnv(envFrom(env))
	require.ErrorIs(t, err, errInvalidEnv)
	require.Contains(t, err.Error(), "JWT_EXPIRES_IN")
}

func TestFromEnv_RejectsUnknownDriver(t *testing.T) {
	env := baseEnv()
	env["STORAGE_DRIVER"] = "ftp"

	_, err := FromEnv(envFrom(env))
	require.ErrorIs(t, err, errInvalidEnv)
}

func TestFromEnv_MinioRequiresBucket(t *testing.T) {
	env := baseEnv()
	env["STORAGE_DRIVER"] = "minio"
	env["S3_ENDPOINT"] = "http://localhost:9000"

	_, err := FromEnv(envFrom(env))
	require.ErrorIs(t, err, errMissingRequiredEnv)
	require.Contains(t, err.Error(), "S3_BUCKET")
}
