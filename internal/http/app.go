// Package http holds the contract between the router and the bounded-context
// modules: the App assembled in cmd/api and the RouterContext each module
// mounts its routes on.
package http

import (
	"context"

	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router reads: listen and CORS
// settings, the JWT secret, and the webhook rate limits.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.IntakeConfig
}

// HealthChecker is pinged by /api/health. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything router.New needs. A nil Health reports healthy.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
