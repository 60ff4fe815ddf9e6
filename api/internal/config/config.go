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
	Port string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiJSONMode bool

	TelegramBotToken string
	WebhookURL       string

	MinDisplay     time.Duration
	MaxUploadBytes int64
	HandoffTTL     time.Duration
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		log.Printf("config: bad %s=%q, using %d", k, v, def)
		return def
	}
	return n
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: bad %s=%q, using %v", k, v, def)
		return def
	}
	return b
}

// Load reads .env (if present) and the process environment. Existing env vars win over .env.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env: %v", err)
	}
	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey:   mustEnv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiJSONMode: getBool("GEMINI_JSON_MODE", true),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		MinDisplay:     time.Duration(getInt("MIN_DISPLAY_MS", 2000)) * time.Millisecond,
		MaxUploadBytes: getInt("MAX_UPLOAD_BYTES", 20<<20),
		HandoffTTL:     time.Duration(getInt("HANDOFF_TTL_MIN", 30)) * time.Minute,
	}
}
