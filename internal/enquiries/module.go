// Package enquiries provides the enquiry intake bounded context: the GreenAPI
// webhook, the public and staff enquiry forms, and the staff assignment lock.
package enquiries

import (
	"enquiry_intake_backend/internal/enquiries/handler"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/enquiries/service"
	"enquiry_intake_backend/internal/events"
	apphttp "enquiry_intake_backend/internal/http"
	"enquiry_intake_backend/platform/config"
	"enquiry_intake_backend/platform/logger"
	"enquiry_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the enquiries bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the enquiries module with all its dependencies.
// redisClient may be nil, in which case deduplication relies on the database alone.
func NewModule(
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	gateway service.Gateway,
	bus events.Bus,
	val *validator.Validator,
	cfg config.IntakeConfig,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	cache := repository.NewDeliveryCache(redisClient, cfg.GetWebhookDedupTTL())
	svc := service.New(repo, cache, gateway, bus, log,
		service.WithStaffMessageDelay(cfg.GetStaffMessageDelay()),
	)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enquiries"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts enquiry routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Provider webhook: always 200, over-budget deliveries are shed
	webhook := ctx.V1.Group("/webhooks/whatsapp")
	webhook.GET("", m.handler.WebhookStatus)
	webhook.POST("", ctx.WebhookLimiter.Shed(), m.handler.Webhook)

	// Public website form
	ctx.V1.POST("/enquiries/public", ctx.PublicFormLimiter.RateLimit(), m.handler.CreatePublic)

	// Staff endpoints
	group := ctx.Protected.Group("/enquiries")
	group.GET("", m.handler.List)
	group.POST("", m.handler.Create)
	group.GET("/stats", m.handler.Stats)
	group.GET("/staff-lock-status", m.handler.LockStatus)
	group.GET("/:id", m.handler.GetByID)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)

	ctx.Admin.GET("/whatsapp/status", m.handler.WhatsAppStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
