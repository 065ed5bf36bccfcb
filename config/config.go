package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Most values have simple defaults suitable for local development.
type Config struct {
	ListenAddr string

	// StoreBackend selects where entity collections are persisted:
	// "memory", "redis", "mysql" or "minio".
	StoreBackend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	JWTSecret string

	// Upload caps in bytes, applied to the decoded payload of data URIs.
	MaxCoverBytes int64
	MaxAudioBytes int64

	// Seeded administrator account. The email doubles as the role marker:
	// whatever user record carries it is the moderator.
	AdminID       string
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// NotifyMailbox is the fixed destination for out-of-band notices.
	NotifyMailbox string
	NotifyQueue   string

	LogLevel      string
	LogOutputPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvInt64 gets an environment variable as int64 or returns a default value.
func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		StoreBackend: getEnv("STORE_BACKEND", "redis"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for credentials
		DBName:     getEnv("DB_NAME", "kedoo"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "kedoo"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "kedoo-dev-secret"),

		MaxCoverBytes: getEnvInt64("MAX_COVER_BYTES", 10<<20),
		MaxAudioBytes: getEnvInt64("MAX_AUDIO_BYTES", 50<<20),

		AdminID:       getEnv("ADMIN_ID", "admin-001"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "moder@olprod.ru"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "zzzz-2014"),
		AdminName:     getEnv("ADMIN_NAME", "Moderator"),

		NotifyMailbox: getEnv("NOTIFY_MAILBOX", "redkino843@gmail.com"),
		NotifyQueue:   getEnv("NOTIFY_QUEUE", "kedoo:notify"),

		LogLevel:      getEnv("LOG_LEVEL", "debug"),
		LogOutputPath: getEnv("LOG_OUTPUT", "logs/kedoo.log"),
	}
}
