package handler

import (
	"io"
	"net/http"
	"time"

	"enquiry_intake_backend/internal/enquiries/service"
	"enquiry_intake_backend/internal/enquiries/transport"
	"enquiry_intake_backend/platform/httpkit"
	"enquiry_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for enquiries.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid enquiry ID"
	maxWebhookBody      = 1 << 20
)

// New creates a new enquiries handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// WebhookStatus lets operators check the webhook URL from a browser.
// GET /api/v1/webhooks/whatsapp
func (h *Handler) WebhookStatus(c *gin.Context) {
	httpkit.OK(c, transport.WebhookStatusResponse{
		Status:         "webhook_endpoint_active",
		Message:        "Webhook endpoint is ready to receive POST requests from GreenAPI",
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		MethodReceived: http.MethodGet,
		ExpectedMethod: http.MethodPost,
	})
}

// Webhook receives provider deliveries. It always answers 200 so the
// provider keeps the endpoint enabled; the body describes what happened.
// POST /api/v1/webhooks/whatsapp
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httpkit.OK(c, transport.WebhookResult{Message: "Failed to read webhook body", Error: err.Error()})
		return
	}
	httpkit.OK(c, h.svc.ProcessWebhook(c.Request.Context(), body))
}

// CreatePublic accepts the website enquiry form.
// POST /api/v1/enquiries/public
func (h *Handler) CreatePublic(c *gin.Context) {
	var req transport.PublicEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BadRequest(c, msgValidationFailed, validator.FieldMessages(err))
		return
	}

	result, err := h.svc.CreatePublic(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// List retrieves all enquiries with the staff lock projection.
// GET /api/v1/enquiries
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetByID retrieves an enquiry by ID.
// GET /api/v1/enquiries/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create stores a staff entered enquiry.
// POST /api/v1/enquiries
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BadRequest(c, msgValidationFailed, validator.FieldMessages(err))
		return
	}
	staff, ok := httpkit.RequireStaff(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req, staff.Login)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Update applies a partial staff edit.
// PUT /api/v1/enquiries/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.UpdateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.BadRequest(c, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.BadRequest(c, msgValidationFailed, validator.FieldMessages(err))
		return
	}
	staff, ok := httpkit.RequireStaff(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req, staff.Login)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes an enquiry.
// DELETE /api/v1/enquiries/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	staff, ok := httpkit.RequireStaff(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, staff.Login); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "Enquiry deleted successfully"})
}

// Stats returns the dashboard counters.
// GET /api/v1/enquiries/stats
func (h *Handler) Stats(c *gin.Context) {
	result, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// LockStatus returns the global staff assignment lock.
// GET /api/v1/enquiries/staff-lock-status
func (h *Handler) LockStatus(c *gin.Context) {
	result, err := h.svc.LockStatus(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// WhatsAppStatus reports the gateway instance state.
// GET /api/v1/admin/whatsapp/status
func (h *Handler) WhatsAppStatus(c *gin.Context) {
	httpkit.OK(c, h.svc.WhatsAppStatus(c.Request.Context()))
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.BadRequest(c, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
