package http

import (
	"enquiry_intake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context with HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the three route groups and the shared limiters.
//
//	V1         /api/v1          no auth (provider webhooks, public form)
//	Protected  /api/v1          staff JWT
//	Admin      /api/v1/admin    staff JWT with the admin role
type RouterContext struct {
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup

	// PublicFormLimiter answers 429 once an IP exceeds the form budget.
	PublicFormLimiter *httpkit.PublicFormRateLimiter
	// WebhookLimiter sheds over-budget provider deliveries with a 200.
	WebhookLimiter *httpkit.IPRateLimiter
}
