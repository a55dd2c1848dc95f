package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken         string
	BotUsername      string // filled in from the API at startup
	StorageChannelID int64
	AdminIDs         []int64
	PollTimeout      int

	DBDriver string // sqlite or mysql
	DBPath   string // sqlite file path
	DBHost   string
	DBPort   string
	DBUser   string
	DBPass   string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	RabbitMQPrefetch int
	NotifyRetryMax   int
	NotifyRetryDelay time.Duration

	MinioHost     string
	MinioPort     string
	MinioUsername string
	MinioPassword string
	BucketName    string
	MinioUseSSL   bool

	HTTPAddr    string
	ConsoleUser string
	ConsolePass string
	JWTSecret   string
	APIRate     float64
	APIBurst    int

	BackupDir   string
	BackupHours int
	AdminEmail  string
	LogFile     string
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64List(key string) []int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads .env and the process configuration. The bot token and
// storage channel are hard requirements; Redis, RabbitMQ and MinIO are
// optional integrations and each feature degrades when unset.
func InitConfig() {
	_ = godotenv.Load()

	AppConfig = Config{
		BotToken:         getEnv("BOT_TOKEN", ""),
		BotUsername:      getEnv("BOT_USERNAME", ""),
		StorageChannelID: getEnvInt64("STORAGE_CHANNEL_ID", 0),
		AdminIDs:         getEnvInt64List("ADMIN_IDS"),
		PollTimeout:      getEnvInt("POLL_TIMEOUT", 30),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:   getEnv("DB_PATH", "data/televault.db"),
		DBHost:   getEnv("DB_HOST", "localhost"),
		DBPort:   getEnv("DB_PORT", "3306"),
		DBUser:   getEnv("DB_USER", "root"),
		DBPass:   getEnv("DB_PASS", "root"),
		DBName:   getEnv("DB_NAME", "televault"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 8),
		NotifyRetryMax:   getEnvInt("NOTIFY_RETRY_MAX", 3),
		NotifyRetryDelay: getEnvDuration("NOTIFY_RETRY_DELAY", 30*time.Second),

		MinioHost:     getEnv("MINIO_HOST", ""),
		MinioPort:     getEnv("MINIO_PORT", "9000"),
		MinioUsername: getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword: getEnv("MINIO_PASSWORD", "minioadmin"),
		BucketName:    getEnv("BUCKET_NAME", "televault"),
		MinioUseSSL:   getEnvBool("MINIO_USE_SSL", false),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8000"),
		ConsoleUser: getEnv("CONSOLE_USER", "admin"),
		ConsolePass: getEnv("CONSOLE_PASS", ""),
		JWTSecret:   getEnv("JWT_SECRET", "televault-console"),
		APIRate:     getEnvFloat("API_RATE", 10),
		APIBurst:    getEnvInt("API_BURST", 20),

		BackupDir:   getEnv("BACKUP_DIR", "backups"),
		BackupHours: getEnvInt("BACKUP_INTERVAL", 24),
		AdminEmail:  getEnv("ADMIN_EMAIL", ""),
		LogFile:     getEnv("LOG_FILE", "televault.log"),
	}

	if AppConfig.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if AppConfig.StorageChannelID == 0 {
		log.Fatal("STORAGE_CHANNEL_ID is required")
	}
}
