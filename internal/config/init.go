package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Settings struct {
	Env           string
	Port          string
	DBDriver      string
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	JWTTTL        time.Duration
	AvatarBaseURL string
	UploadDir     string
	DeletePolicy  string
	FeedPageSize  int
	BatchSize     int
	FeedSync      time.Duration
	CORSOrigins   []string
}

// Load بارگذاری .env (در صورت وجود) و خواندن تنظیمات از محیط
func Load() *Settings {
	if err := godotenv.Load(); err != nil && Logger != nil {
		Logger.Info("No .env file found, using system environment variables")
	}

	return &Settings{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("APP_PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:         os.Getenv("DB_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        getEnvDuration("JWT_TTL", 24*time.Hour),
		AvatarBaseURL: getEnv("AVATAR_BASE_URL", "/avatars/"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads/images"),
		DeletePolicy:  strings.ToLower(getEnv("DELETE_POLICY", "author")),
		FeedPageSize:  getEnvInt("FEED_PAGE_SIZE", 20),
		BatchSize:     getEnvInt("BATCH_SIZE", 100),
		FeedSync:      getEnvDuration("FEED_SYNC_INTERVAL", 5*time.Minute),
		CORSOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
}

// Validate reports every missing or malformed setting at once.
func (s *Settings) Validate() error {
	var problems []string
	if s.DBDriver != "memory" && s.DBDSN == "" {
		problems = append(problems, "DB_DSN is not set")
	}
	switch s.DBDriver {
	case "mysql", "postgres", "sqlite", "memory":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported", s.DBDriver))
	}
	if s.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is not set")
	}
	switch s.DeletePolicy {
	case "author", "any":
	default:
		problems = append(problems, fmt.Sprintf("DELETE_POLICY %q is not supported", s.DeletePolicy))
	}
	if s.FeedPageSize <= 0 {
		problems = append(problems, "FEED_PAGE_SIZE must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
