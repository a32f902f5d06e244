package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Token configuration
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	// Upload and media tool configuration
	UploadDir      string
	MaxUploadBytes int64
	FFmpegPath     string
	FFprobePath    string

	// Media store configuration
	MediaBackend   string // local, minio
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Token revocation store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Domain events
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string

	Seed bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "")
	v.SetDefault("DB_CONNECTION_LIMIT", 5)
	v.SetDefault("JWT_ISSUER", "videohost")
	v.SetDefault("JWT_AUDIENCE", "videohost-client")
	v.SetDefault("JWT_EXPIRY", "1h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", int64(500*1024*1024))
	v.SetDefault("FFMPEG_PATH", "ffmpeg")
	v.SetDefault("FFPROBE_PATH", "ffprobe")
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MINIO_BUCKET", "videohost")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_TOPIC", "videohost.events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SEED", false)
}

// defaultDBPort fills in the port when DB_PORT is not set
func defaultDBPort(dbType string) string {
	switch dbType {
	case "mysql", "mariadb":
		return "3306"
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	}
	return ""
}

// Load loads configuration from the environment. A .env file in the working
// directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load()
}

// LoadFile is Load with an explicit .env path, which must exist
func LoadFile(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return load()
}

func load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:              v.GetString("PORT"),
		DBType:            strings.ToLower(v.GetString("DB_TYPE")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBDatabase:        v.GetString("DB_DATABASE"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBConnectionLimit: v.GetInt("DB_CONNECTION_LIMIT"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),
		JWTAudience:       v.GetString("JWT_AUDIENCE"),
		JWTExpiry:         v.GetDuration("JWT_EXPIRY"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:    v.GetInt64("MAX_UPLOAD_BYTES"),
		FFmpegPath:        v.GetString("FFMPEG_PATH"),
		FFprobePath:       v.GetString("FFPROBE_PATH"),
		MediaBackend:      strings.ToLower(v.GetString("MEDIA_BACKEND")),
		MinioEndpoint:     v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:    v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:    v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:       v.GetString("MINIO_BUCKET"),
		MinioUseSSL:       v.GetBool("MINIO_USE_SSL"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:        v.GetString("KAFKA_TOPIC"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		Seed:              v.GetBool("SEED"),
	}
	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort(cfg.DBType)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be a positive duration")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	switch c.MediaBackend {
	case "local":
	case "minio":
		if c.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio media backend")
		}
	default:
		return fmt.Errorf("unsupported media backend: %s", c.MediaBackend)
	}
	return nil
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
