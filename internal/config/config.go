package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the dashboard server and the CLI.
type Config struct {
	HTTPAddr string

	UpstreamURL     string
	UpstreamTimeout time.Duration
	DepartmentURL   string
	LoginURL        string

	JWTSecret  string
	SessionTTL time.Duration

	DBEnabled  bool
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TelegramBotToken    string
	TelegramAdminChatID int64

	TimeZone string
	Lang     string

	LogLevel  string
	LogFormat string

	// CLI
	SeenDir  string
	Email    string
	Password string
	Role     string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		UpstreamURL:         strings.TrimRight(getEnv("DCS_UPSTREAM_URL", "http://localhost:8092"), "/"),
		UpstreamTimeout:     time.Duration(getEnvInt("DCS_UPSTREAM_TIMEOUT_SEC", int(DefaultUpstreamTimeout/time.Second))) * time.Second,
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionTTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", int(DefaultSessionTTL/time.Hour))) * time.Hour,
		DBEnabled:           getEnvBool("DB_ENABLED", false),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBUser:              getEnv("DB_USER", "user"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "complaintdesk"),
		DBPort:              getEnv("DB_PORT", "5432"),
		RedisEnabled:        getEnvBool("REDIS_ENABLED", false),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChatID: int64(getEnvInt("TELEGRAM_ADMIN_CHAT_ID", 0)),
		TimeZone:            getEnv("DASHBOARD_TZ", "Local"),
		Lang:                getEnv("DASHBOARD_LANG", "en"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		SeenDir:             getEnv("DCS_SEEN_DIR", defaultSeenDir()),
		Email:               os.Getenv("DCS_EMAIL"),
		Password:            os.Getenv("DCS_PASSWORD"),
		Role:                getEnv("DCS_ROLE", "ADMIN"),
	}
	c.DepartmentURL = getEnv("DCS_DEPARTMENT_URL", c.UpstreamURL+DefaultDepartmentPath)
	c.LoginURL = getEnv("DCS_LOGIN_URL", DefaultLoginPath)

	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if _, err := c.Location(); err != nil {
		return nil, fmt.Errorf("DASHBOARD_TZ: %w", err)
	}
	return c, nil
}

// RequireServer validates the settings only the HTTP server needs.
func (c *Config) RequireServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// PostgresDSN builds the gorm postgres DSN.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Location is the time zone used for chart day buckets.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

func defaultSeenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".complaintdesk"
	}
	return dir + string(os.PathSeparator) + "complaintdesk"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}
