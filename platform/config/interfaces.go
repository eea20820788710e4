package config

import "time"

// Each consumer depends on the narrowest of these; *Config implements all of them.

type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int
	GetAutoMigrate() bool
}

// JWTConfig is the shared secret of the auth service that issues staff tokens.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WhatsAppConfig is the GreenAPI instance. An empty instance id disables sending.
type WhatsAppConfig interface {
	GetGreenAPIURL() string
	GetGreenAPIInstanceID() string
	GetGreenAPIToken() string
	GetGreenAPITimeout() time.Duration
}

// SchedulerConfig covers Redis, shared by the dedup cache and the asynq queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetNotifyEmails() []string
	IsSMTPEnabled() bool
}

// IntakeConfig tunes webhook intake and outbound staff messages.
type IntakeConfig interface {
	GetStaffMessageDelay() time.Duration
	GetWebhookRateLimit() float64
	GetWebhookRateBurst() int
	GetWebhookDedupTTL() time.Duration
}
