// Package config reads the environment (and an optional .env file) once at startup.
package config

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	DBMaxConns      int
	AutoMigrate     bool
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	GreenAPIURL        string
	GreenAPIInstanceID string
	GreenAPIToken      string
	GreenAPITimeout    time.Duration

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string
	NotifyEmails     []string

	StaffMessageDelay time.Duration
	WebhookRateLimit  float64
	WebhookRateBurst  int
	WebhookDedupTTL   time.Duration
	LockCheckInterval time.Duration
}

func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int { return c.DBMaxConns }
func (c *Config) GetAutoMigrate() bool     { return c.AutoMigrate }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetGreenAPIURL() string            { return c.GreenAPIURL }
func (c *Config) GetGreenAPIInstanceID() string     { return c.GreenAPIInstanceID }
func (c *Config) GetGreenAPIToken() string          { return c.GreenAPIToken }
func (c *Config) GetGreenAPITimeout() time.Duration { return c.GreenAPITimeout }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetNotifyEmails() []string   { return c.NotifyEmails }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.EmailFromAddress != "" && len(c.NotifyEmails) > 0
}

func (c *Config) GetStaffMessageDelay() time.Duration { return c.StaffMessageDelay }
func (c *Config) GetWebhookRateLimit() float64        { return c.WebhookRateLimit }
func (c *Config) GetWebhookRateBurst() int            { return c.WebhookRateBurst }
func (c *Config) GetWebhookDedupTTL() time.Duration   { return c.WebhookDedupTTL }
func (c *Config) GetLockCheckInterval() time.Duration { return c.LockCheckInterval }

// Load reads .env when present, then the process environment, and reports
// every invalid setting at once.
func Load() (*Config, error) {
	_ = godotenv.Load()

	origins := envList("CORS_ORIGINS", "http://localhost:3000")
	cfg := &Config{
		Env:             envString("APP_ENV", "development"),
		HTTPAddr:        envString("HTTP_ADDR", ":8080"),
		DatabaseURL:     envString("DATABASE_URL", ""),
		DBMaxConns:      envInt("DB_MAX_CONNS", 15),
		AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		JWTAccessSecret: envString("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    envBool("CORS_ALLOW_ALL", false) || slices.Contains(origins, "*"),
		CORSOrigins:     origins,
		CORSAllowCreds:  envBool("CORS_ALLOW_CREDENTIALS", true),

		GreenAPIURL:        strings.TrimRight(envString("GREENAPI_URL", "https://api.green-api.com"), "/"),
		GreenAPIInstanceID: envString("GREENAPI_INSTANCE_ID", ""),
		GreenAPIToken:      envString("GREENAPI_TOKEN", ""),
		GreenAPITimeout:    envDuration("GREENAPI_TIMEOUT", 30*time.Second),

		RedisURL:         envString("REDIS_URL", ""),
		RedisTLSInsecure: envBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:   envString("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency: envInt("ASYNQ_CONCURRENCY", 5),

		SMTPHost:         envString("SMTP_HOST", ""),
		SMTPPort:         envInt("SMTP_PORT", 587),
		SMTPUsername:     envString("SMTP_USERNAME", ""),
		SMTPPassword:     envString("SMTP_PASSWORD", ""),
		EmailFromName:    envString("EMAIL_FROM_NAME", "Business Guru"),
		EmailFromAddress: envString("EMAIL_FROM_ADDRESS", ""),
		NotifyEmails:     envList("NOTIFY_EMAILS", ""),

		StaffMessageDelay: envDuration("STAFF_MESSAGE_DELAY", time.Second),
		WebhookRateLimit:  envFloat("WEBHOOK_RATE_LIMIT", 20),
		WebhookRateBurst:  envInt("WEBHOOK_RATE_BURST", 40),
		WebhookDedupTTL:   envDuration("WEBHOOK_DEDUP_TTL", 24*time.Hour),
		LockCheckInterval: envDuration("STAFF_LOCK_CHECK_INTERVAL", 15*time.Minute),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTAccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET is required"))
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		errs = append(errs, errors.New("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true"))
	}
	if (c.GreenAPIInstanceID == "") != (c.GreenAPIToken == "") {
		errs = append(errs, errors.New("GREENAPI_INSTANCE_ID and GREENAPI_TOKEN must be set together"))
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(envString(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// envDuration accepts zero but not negative or unparsable values.
func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(envString(key, ""))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envString(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(envString(key, ""), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

// envList splits a comma separated value and drops blank entries.
func envList(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(envString(key, fallback), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
