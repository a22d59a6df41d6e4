package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Webhook   WebhookConfig
	Interview InterviewConfig
	Bot       BotConfig
	Database  DatabaseConfig
	Redis     RedisConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// WebhookConfig holds platform webhook verification settings.
type WebhookConfig struct {
	// Secret is the shared webhook secret. When empty, every inbound
	// webhook fails verification (never fails open).
	Secret string
	// AutoJoin starts a session automatically on meeting.started events.
	// When false the bot only joins via POST /sessions.
	AutoJoin bool
}

// InterviewConfig holds the fixed question sequence and pacing.
type InterviewConfig struct {
	// Questions are delivered in order, one per interval. Pipe-separated
	// in INTERVIEW_QUESTIONS since questions may contain commas.
	Questions []string
	Interval  time.Duration
}

// BotConfig holds bot identity and automation timeouts.
type BotConfig struct {
	DisplayName   string
	JoinTimeout   time.Duration // bounded wait for join confirmation
	ActionTimeout time.Duration // per controller action (chat, leave, release)
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL
// disables session history persistence.
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection settings. An empty Addr disables
// cross-instance event fan-out and the outcome queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var defaultQuestions = []string{
	"Hi! I'm the interview assistant. Could you start by introducing yourself?",
	"What interests you about this role?",
	"Tell me about a project you're proud of.",
	"How do you approach debugging a problem you've never seen before?",
	"Do you have any questions for us?",
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	questions := splitTrim(getEnv("INTERVIEW_QUESTIONS", ""), "|")
	if len(questions) == 0 {
		questions = defaultQuestions
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Webhook: WebhookConfig{
			Secret:   getEnv("WEBHOOK_SECRET_TOKEN", ""),
			AutoJoin: getEnvBool("WEBHOOK_AUTO_JOIN", false),
		},
		Interview: InterviewConfig{
			Questions: questions,
			Interval:  time.Duration(getEnvInt("INTERVIEW_INTERVAL_SEC", 45)) * time.Second,
		},
		Bot: BotConfig{
			DisplayName:   getEnv("BOT_DISPLAY_NAME", "Interview Bot"),
			JoinTimeout:   time.Duration(getEnvInt("BOT_JOIN_TIMEOUT_SEC", 60)) * time.Second,
			ActionTimeout: time.Duration(getEnvInt("BOT_ACTION_TIMEOUT_SEC", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
