package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration. An empty address disables locking and caching.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`

	// Text generation.
	GeminiAPIKey     string  `mapstructure:"GEMINI_API_KEY"`
	LLMModel         string  `mapstructure:"LLM_MODEL"`
	LLMFastModel     string  `mapstructure:"LLM_FAST_MODEL"`
	LLMFallbackModel string  `mapstructure:"LLM_FALLBACK_MODEL"`
	LLMMaxTokens     int     `mapstructure:"LLM_MAX_TOKENS"`
	LLMFastMaxTokens int     `mapstructure:"LLM_FAST_MAX_TOKENS"`
	LLMTemperature   float32 `mapstructure:"LLM_TEMPERATURE"`
	LLMMaxRetries    int     `mapstructure:"LLM_MAX_RETRIES"`
	UseLocalLLM      bool    `mapstructure:"USE_LOCAL_LLM"`

	// Reverse geocoding.
	GeocoderURL            string `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent      string `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderTimeoutSeconds int    `mapstructure:"GEOCODER_TIMEOUT_SECONDS"`

	// Booking.
	BookingSlotMinutes int     `mapstructure:"BOOKING_SLOT_MINUTES"`
	SearchRadiusKm     float64 `mapstructure:"SEARCH_RADIUS_KM"`
	Timezone           string  `mapstructure:"TIMEZONE"`
}

var AppConfig Config

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "booking_ai")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_LOCK_DB", 1)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("LLM_MODEL", "gemini-1.5-pro-002")
	v.SetDefault("LLM_FAST_MODEL", "gemini-1.5-flash-002")
	v.SetDefault("LLM_FALLBACK_MODEL", "gemini-1.5-flash")
	v.SetDefault("LLM_MAX_TOKENS", 400)
	v.SetDefault("LLM_FAST_MAX_TOKENS", 160)
	v.SetDefault("LLM_TEMPERATURE", 0.4)
	v.SetDefault("LLM_MAX_RETRIES", 3)
	v.SetDefault("USE_LOCAL_LLM", false)
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("GEOCODER_USER_AGENT", "HustlrBot/1.0 (contact: support@hustlr.app)")
	v.SetDefault("GEOCODER_TIMEOUT_SECONDS", 4)
	v.SetDefault("BOOKING_SLOT_MINUTES", 60)
	v.SetDefault("SEARCH_RADIUS_KM", 30)
	v.SetDefault("TIMEZONE", "Local")
}

// Load reads configuration from v into a Config.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// UseMemoryStore reports whether DATABASE_URL selects the in-memory store.
func (c Config) UseMemoryStore() bool {
	return strings.HasPrefix(c.DatabaseURL, "memory://")
}

func (c Config) SlotDuration() time.Duration {
	if c.BookingSlotMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.BookingSlotMinutes) * time.Minute
}

func (c Config) GeocoderTimeout() time.Duration {
	if c.GeocoderTimeoutSeconds <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.GeocoderTimeoutSeconds) * time.Second
}

// Location resolves TIMEZONE, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using local time", c.Timezone)
		return time.Local
	}
	return loc
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return AppConfig.IsProduction()
}
