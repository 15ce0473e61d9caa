package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Synthesis drivers selectable through SYNTHESIS_DRIVER.
const (
	SynthesisDriverREST = "rest"
	SynthesisDriverSDK  = "sdk"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	SynthesisDriver    string
	SynthesisTimeout   time.Duration
	SupabaseURL        string
	SupabaseAnonKey    string
	DatabaseURL        string
	StaticDir          string
	StoragePath        string
	GeoIPDBPath        string
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	ClientIdleTimeout  time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults. Missing secrets are not an error; see Missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		SynthesisDriver:    strings.ToLower(getEnv("SYNTHESIS_DRIVER", SynthesisDriverREST)),
		SynthesisTimeout:   time.Second * time.Duration(getEnvInt("SYNTHESIS_TIMEOUT_SECONDS", 120)),
		SupabaseURL:        firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"),
		SupabaseAnonKey:    firstEnv("SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StaticDir:          getEnv("STATIC_DIR", "./dist"),
		StoragePath:        getEnv("STORAGE_PATH", "./jewelshot-output"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		ClientIdleTimeout:  time.Minute * time.Duration(getEnvInt("CLIENT_IDLE_TIMEOUT_MINUTES", 60)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 150)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	switch cfg.SynthesisDriver {
	case SynthesisDriverREST, SynthesisDriverSDK:
	default:
		cfg.SynthesisDriver = SynthesisDriverREST
	}

	return cfg, nil
}

// Missing lists the unset variables that disable a feature. Only one of the
// Gemini key sources is needed, so DATABASE_URL stands in for the key.
func (c *Config) Missing() []string {
	var missing []string
	if c.GeminiAPIKey == "" && c.DatabaseURL == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	return missing
}

// Addr is the listen address. The service binds every interface.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// IsDevelopment reports whether APP_ENV selects development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
