package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "enquiry_intake_backend/internal/http"
	"enquiry_intake_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testConfig struct {
	origins []string
}

func (testConfig) GetHTTPAddr() string                 { return ":8080" }
func (testConfig) GetCORSAllowAll() bool               { return false }
func (c testConfig) GetCORSOrigins() []string          { return c.origins }
func (testConfig) GetCORSAllowCreds() bool             { return true }
func (testConfig) GetJWTAccessSecret() string          { return "s3cret" }
func (testConfig) GetStaffMessageDelay() time.Duration { return time.Second }
func (testConfig) GetWebhookRateLimit() float64        { return 10 }
func (testConfig) GetWebhookRateBurst() int            { return 20 }
func (testConfig) GetWebhookDedupTTL() time.Duration   { return time.Hour }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Protected.GET("/secret", func(c *gin.Context) { c.String(http.StatusOK, "secret") })
	ctx.Admin.GET("/panel", func(c *gin.Context) { c.String(http.StatusOK, "panel") })
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  testConfig{origins: []string{"https://staff.example.com"}},
		Logger:  logger.New("development"),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func TestRoutesAndGroups(t *testing.T) {
	engine := newEngine(nil)

	tests := []struct {
		path string
		code int
	}{
		{"/api/health", http.StatusOK},
		{"/api/v1/ping", http.StatusOK},
		{"/api/v1/secret", http.StatusUnauthorized},
		{"/api/v1/admin/panel", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, rec.Code)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s: missing X-Request-ID", tt.path)
		}
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	engine := newEngine(pingFunc(func(context.Context) error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newEngine(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Origin", "https://staff.example.com")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://staff.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
