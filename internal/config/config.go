package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultInternalToken = "change-me-internal-token"
)

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type SMSConfig struct {
	GatewayURL string
	APIKey     string
	SenderName string
	Timeout    time.Duration
}

func (c SMSConfig) Enabled() bool {
	return c.GatewayURL != "" && c.APIKey != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	AppBaseURL    string
	ProductName   string
	Timezone      string
	JWTSecret     string
	InternalToken string
	LogLevel      string
	LogFormat     string

	CORSAllowedOrigins []string
	InternalAllowedIPs []string

	SMTP  SMTPConfig
	SMS   SMSConfig
	Redis RedisConfig

	DedupeTTL            time.Duration
	FanoutPoolSize       int
	ReminderPollInterval time.Duration
	ReminderBatchSize    int
}

// Load reads configuration from environment variables (and .env, loaded by the caller).
// Variable names are used as-is, e.g. DATABASE_URL, SMTP_HOST, REMINDER_POLL_INTERVAL.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:        strings.ToLower(strings.TrimSpace(firstNonEmpty(v.GetString("APP_ENV"), v.GetString("ENV"), "dev"))),
		HTTPAddr:      strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		AppBaseURL:    strings.TrimRight(strings.TrimSpace(v.GetString("APP_BASE_URL")), "/"),
		ProductName:   strings.TrimSpace(v.GetString("PRODUCT_NAME")),
		Timezone:      strings.TrimSpace(v.GetString("APP_TIMEZONE")),
		JWTSecret:     strings.TrimSpace(v.GetString("JWT_SECRET")),
		InternalToken: strings.TrimSpace(v.GetString("INTERNAL_TOKEN")),
		LogLevel:      strings.TrimSpace(v.GetString("LOG_LEVEL")),
		LogFormat:     strings.TrimSpace(v.GetString("LOG_FORMAT")),
		SMTP: SMTPConfig{
			Host:          strings.TrimSpace(v.GetString("SMTP_HOST")),
			Port:          v.GetInt("SMTP_PORT"),
			User:          v.GetString("SMTP_USER"),
			Pass:          v.GetString("SMTP_PASS"),
			From:          strings.TrimSpace(v.GetString("SMTP_FROM")),
			SkipTLSVerify: v.GetBool("SMTP_SKIP_TLS_VERIFY"),
		},
		SMS: SMSConfig{
			GatewayURL: strings.TrimSpace(v.GetString("SMS_GATEWAY_URL")),
			APIKey:     strings.TrimSpace(v.GetString("SMS_API_KEY")),
			SenderName: strings.TrimSpace(v.GetString("SMS_SENDER_NAME")),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		InternalAllowedIPs: splitList(v.GetString("INTERNAL_ALLOWED_IPS")),
		FanoutPoolSize:    v.GetInt("FANOUT_POOL_SIZE"),
		ReminderBatchSize: v.GetInt("REMINDER_BATCH_SIZE"),
	}

	var err error
	if cfg.SMS.Timeout, err = parseDuration(v, "SMS_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.DedupeTTL, err = parseDuration(v, "DEDUPE_TTL"); err != nil {
		return nil, err
	}
	if cfg.ReminderPollInterval, err = parseDuration(v, "REMINDER_POLL_INTERVAL"); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "file:petmemorial.db?cache=shared")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("PRODUCT_NAME", "Rainbow Paws")
	v.SetDefault("APP_TIMEZONE", "Asia/Manila")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("INTERNAL_TOKEN", defaultInternalToken)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMS_SENDER_NAME", "RainbowPaws")
	v.SetDefault("SMS_TIMEOUT", "10s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEDUPE_TTL", "10m")
	v.SetDefault("FANOUT_POOL_SIZE", 16)
	v.SetDefault("REMINDER_POLL_INTERVAL", "1m")
	v.SetDefault("REMINDER_BATCH_SIZE", 100)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.AppBaseURL == "" {
		return fmt.Errorf("APP_BASE_URL must not be empty")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if cfg.FanoutPoolSize <= 0 {
		return fmt.Errorf("FANOUT_POOL_SIZE must be > 0")
	}
	if cfg.ReminderBatchSize <= 0 {
		return fmt.Errorf("REMINDER_BATCH_SIZE must be > 0")
	}
	if cfg.ReminderPollInterval <= 0 {
		return fmt.Errorf("REMINDER_POLL_INTERVAL must be > 0")
	}
	if cfg.DedupeTTL <= 0 {
		return fmt.Errorf("DEDUPE_TTL must be > 0")
	}
	if cfg.SMS.Timeout <= 0 {
		return fmt.Errorf("SMS_TIMEOUT must be > 0")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.InternalToken, defaultInternalToken) {
			return fmt.Errorf("in prod/release INTERNAL_TOKEN must be set and not default")
		}
		if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") && !strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
			return fmt.Errorf("in prod/release DATABASE_URL must point to PostgreSQL")
		}
	}
	return nil
}

// Location returns the timezone booking dates and times are expressed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
