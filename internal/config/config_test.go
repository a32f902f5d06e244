package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DATABASE", "videohost.db")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, int64(500*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "local", cfg.MediaBackend)
	assert.Equal(t, "videohost.events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.Seed)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DATABASE", "videohost")
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
}

func TestLoadRequired(t *testing.T) {
	t.Setenv("DB_DATABASE", "")
	t.Setenv("JWT_SECRET", "x")
	_, err := load()
	assert.ErrorContains(t, err, "DB_DATABASE")

	t.Setenv("DB_DATABASE", "videohost.db")
	t.Setenv("JWT_SECRET", "")
	_, err = load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadMinioNeedsEndpoint(t *testing.T) {
	t.Setenv("DB_DATABASE", "videohost.db")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("MEDIA_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "")

	_, err := load()
	assert.ErrorContains(t, err, "MINIO_ENDPOINT")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_DATABASE=fromfile.db\nJWT_SECRET=filesecret\n"), 0o600))

	t.Setenv("DB_DATABASE", "")
	t.Setenv("JWT_SECRET", "")
	// godotenv does not override variables that are already set, even when empty
	os.Unsetenv("DB_DATABASE")
	os.Unsetenv("JWT_SECRET")

	cfg, err := LoadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "fromfile.db", cfg.DBDatabase)
	assert.Equal(t, "filesecret", cfg.JWTSecret)
}
