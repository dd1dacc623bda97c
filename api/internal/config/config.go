package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	GeminiAPIKey string
	VisionModel  string
	TextModel    string

	UpstreamTimeout    time.Duration
	UpstreamMaxRetries int
	UpstreamRPS        float64
	UpstreamBurst      int

	MaxUploadBytes int64
	MaxImagePixels int64

	LogLevel  string
	LogFormat string

	DatabaseURL string
}

// вдвое выше порога DecompressionBomb в PIL
const defaultMaxImagePixels int64 = 2 * 178956970

var ErrMissingAPIKey = errors.New("missing required env GOOGLE_API_KEY (or GEMINI_API_KEY)")

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("VISION_MODEL", "gemini-2.5-flash")
	v.SetDefault("TEXT_MODEL", "gemini-2.5-flash")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("UPSTREAM_MAX_RETRIES", 0)
	v.SetDefault("UPSTREAM_RPS", 0)
	v.SetDefault("UPSTREAM_BURST", 1)
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("MAX_IMAGE_PIXELS", defaultMaxImagePixels)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load читает .env (если есть), затем переменные окружения.
// Ключ API читается один раз и дальше передаётся явно в движок.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Port: strings.TrimPrefix(strings.TrimSpace(v.GetString("PORT")), ":"),

		GeminiAPIKey: firstNonEmpty(v.GetString("GOOGLE_API_KEY"), v.GetString("GEMINI_API_KEY")),
		VisionModel:  strings.TrimSpace(v.GetString("VISION_MODEL")),
		TextModel:    strings.TrimSpace(v.GetString("TEXT_MODEL")),

		UpstreamTimeout:    v.GetDuration("UPSTREAM_TIMEOUT"),
		UpstreamMaxRetries: v.GetInt("UPSTREAM_MAX_RETRIES"),
		UpstreamRPS:        v.GetFloat64("UPSTREAM_RPS"),
		UpstreamBurst:      v.GetInt("UPSTREAM_BURST"),

		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		MaxImagePixels: v.GetInt64("MAX_IMAGE_PIXELS"),

		LogLevel:  strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),

		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 30 * time.Second
	}
	if cfg.UpstreamMaxRetries < 0 {
		cfg.UpstreamMaxRetries = 0
	}
	if cfg.UpstreamBurst <= 0 {
		cfg.UpstreamBurst = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 * 1024 * 1024
	}
	if cfg.MaxImagePixels <= 0 {
		cfg.MaxImagePixels = defaultMaxImagePixels
	}
	return cfg, nil
}

func (c *Config) Addr() string { return ":" + c.Port }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
