package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	LogLevel  string

	CatalogSource     string
	CatalogSheet      string
	CatalogHeaderRows int
	CatalogNameCol    int
	CatalogPriceCol   int

	GoogleAPIKey       string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleRefreshToken string

	PromoDiscountPct float64
	PromoRounding    string
	PromoCurrency    string
	PromptProfile    string

	LLMProvider    string
	LLMEndpoint    string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	HTTPTimeoutMs    int
	HTTPRateLimitRPS int
	HTTPMaxAttempts  int

	SearchEndpoint   string
	SearchMaxResults int
	SearchMaxChars   int

	MailFrom          string
	MailTo            string
	IMAPHost          string
	IMAPPort          int
	IMAPSecure        bool
	IMAPUser          string
	IMAPPassword      string
	IMAPDraftsMailbox string

	AutopilotIntervalSec int
	AutopilotReload      bool
	AutopilotPublish     string
	AutopilotExport      bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "promodraft.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CatalogSource:     getEnv("CATALOG_SOURCE", filepath.Join(cwd, "data", "catalog.xlsx")),
		CatalogSheet:      getEnv("CATALOG_SHEET", ""),
		CatalogHeaderRows: getEnvInt("CATALOG_HEADER_ROWS", 3),
		CatalogNameCol:    getEnvInt("CATALOG_NAME_COL", 0),
		CatalogPriceCol:   getEnvInt("CATALOG_PRICE_COL", 1),

		GoogleAPIKey:       getEnv("GOOGLE_API_KEY", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		PromoDiscountPct: getEnvFloat("PROMO_DISCOUNT_PCT", 5),
		PromoRounding:    getEnv("PROMO_ROUNDING", "half_up"),
		PromoCurrency:    getEnv("PROMO_CURRENCY", "$"),
		PromptProfile:    getEnv("PROMPT_PROFILE", ""),

		LLMProvider:    getEnv("LLM_PROVIDER", "openai"),
		LLMEndpoint:    getEnv("LLM_ENDPOINT", "https://api.groq.com/openai/v1/chat/completions"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),

		HTTPTimeoutMs:    getEnvInt("HTTP_TIMEOUT_MS", 30000),
		HTTPRateLimitRPS: getEnvInt("HTTP_RATE_LIMIT_RPS", 2),
		HTTPMaxAttempts:  getEnvInt("HTTP_MAX_ATTEMPTS", 3),

		SearchEndpoint:   getEnv("SEARCH_ENDPOINT", "https://html.duckduckgo.com/html/"),
		SearchMaxResults: getEnvInt("SEARCH_MAX_RESULTS", 5),
		SearchMaxChars:   getEnvInt("SEARCH_MAX_CHARS", 4000),

		MailFrom:          getEnv("MAIL_FROM", ""),
		MailTo:            getEnv("MAIL_TO", ""),
		IMAPHost:          getEnv("IMAP_HOST", ""),
		IMAPPort:          getEnvInt("IMAP_PORT", 993),
		IMAPSecure:        getEnvBool("IMAP_SECURE", true),
		IMAPUser:          getEnv("IMAP_USER", ""),
		IMAPPassword:      getEnv("IMAP_PASSWORD", ""),
		IMAPDraftsMailbox: getEnv("IMAP_DRAFTS_MAILBOX", "Drafts"),

		AutopilotIntervalSec: getEnvInt("AUTOPILOT_INTERVAL_SEC", 3600),
		AutopilotReload:      getEnvBool("AUTOPILOT_RELOAD", true),
		AutopilotPublish:     getEnv("AUTOPILOT_PUBLISH", ""),
		AutopilotExport:      getEnvBool("AUTOPILOT_EXPORT", false),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
