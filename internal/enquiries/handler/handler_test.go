package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/enquiries/repository"
	"enquiry_intake_backend/internal/enquiries/service"
	"enquiry_intake_backend/internal/events"
	"enquiry_intake_backend/internal/whatsapp"
	"enquiry_intake_backend/platform/httpkit"
	"enquiry_intake_backend/platform/logger"
	"enquiry_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// stubRepo implements only what these handler paths reach.
type stubRepo struct {
	repository.Repository
	rows map[uuid.UUID]domain.Enquiry
}

func (r *stubRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Enquiry, error) {
	e, ok := r.rows[id]
	if !ok {
		return domain.Enquiry{}, repository.ErrNotFound
	}
	return e, nil
}

func (r *stubRepo) FindByDedupKey(context.Context, string, string) (domain.Enquiry, error) {
	return domain.Enquiry{}, repository.ErrNotFound
}

func (r *stubRepo) InsertIfAbsent(_ context.Context, e domain.Enquiry) (domain.Enquiry, bool, error) {
	e.ID = uuid.New()
	r.rows[e.ID] = e
	return e, true, nil
}

func (r *stubRepo) CountOldUnassigned(_ context.Context, cutoff time.Time) (int, error) {
	n := 0
	for _, e := range r.rows {
		if e.Date.Before(cutoff) && !e.Staff.IsHuman() {
			n++
		}
	}
	return n, nil
}

func (r *stubRepo) CountAssigned(context.Context) (int, error) {
	n := 0
	for _, e := range r.rows {
		if e.Staff.IsHuman() {
			n++
		}
	}
	return n, nil
}

func newTestEngine(rows ...domain.Enquiry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := &stubRepo{rows: map[uuid.UUID]domain.Enquiry{}}
	for _, e := range rows {
		repo.rows[e.ID] = e
	}

	log := logger.New("development")
	var gateway *whatsapp.Client
	svc := service.New(repo, nil, gateway, events.NewInMemoryBus(log), log, service.WithStaffMessageDelay(0))
	h := New(svc, validator.New())

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.GET("/webhooks/whatsapp", h.WebhookStatus)
	v1.POST("/webhooks/whatsapp", h.Webhook)
	v1.POST("/enquiries/public", h.CreatePublic)

	staff := v1.Group("/enquiries", func(c *gin.Context) {
		httpkit.SetStaff(c, httpkit.Staff{Login: "bob"})
		c.Next()
	})
	staff.GET("/staff-lock-status", h.LockStatus)
	staff.PUT("/:id", h.Update)
	return engine
}

func do(engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestWebhookAlwaysAnswersOK(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty", "", "Empty data received"},
		{"malformed", "{not json", "Malformed payload ignored"},
		{"status event", `{"typeWebhook":"outgoingMessageStatus","status":"delivered"}`, "Webhook event outgoingMessageStatus received and ignored"},
		{"interested", `{"typeWebhook":"incomingMessageReceived","idMessage":"ABC","senderData":{"chatId":"919876543210@c.us","senderName":"John Doe"},"messageData":{"textMessage":{"text":"Hi I am interested!"}}}`, "WhatsApp enquiry created successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(engine, http.MethodPost, "/api/v1/webhooks/whatsapp", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if body["message"] != tt.message {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestWebhookInterestedReportsUnconfiguredGateway(t *testing.T) {
	engine := newTestEngine()
	body := `{"typeWebhook":"incomingMessageReceived","idMessage":"X1","senderData":{"chatId":"919876543210@c.us"},"messageData":{"textMessage":{"text":"interested"}}}`

	_, decoded := do(engine, http.MethodPost, "/api/v1/webhooks/whatsapp", body)
	if decoded["whatsapp_sent"] != false || decoded["enquiry_id"] == nil {
		t.Fatalf("unexpected body %v", decoded)
	}
	if decoded["whatsapp_error"] != "WhatsApp service not available - Check GreenAPI configuration" {
		t.Fatalf("unexpected error %v", decoded["whatsapp_error"])
	}
}

func TestWebhookStatus(t *testing.T) {
	rec, body := do(newTestEngine(), http.MethodGet, "/api/v1/webhooks/whatsapp", "")
	if rec.Code != http.StatusOK || body["status"] != "webhook_endpoint_active" || body["expected_method"] != "POST" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
}

func TestUpdateLockedRecordAnswers400(t *testing.T) {
	e := domain.Enquiry{
		ID:           uuid.New(),
		DisplayName:  "Ravi",
		MobileNumber: "9876543210",
		Staff:        domain.Staff("Alice"),
		StaffLocked:  true,
		Date:         time.Now().Add(-time.Hour),
	}
	engine := newTestEngine(e)

	rec, body := do(engine, http.MethodPut, "/api/v1/enquiries/"+e.ID.String(), `{"staff":"Bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["error"] != "Staff assignment is locked. Cannot change assigned staff member." {
		t.Fatalf("unexpected body %v", body)
	}

	rec, _ = do(engine, http.MethodPut, "/api/v1/enquiries/not-a-uuid", `{"staff":"Bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad id, got %d", rec.Code)
	}

	rec, _ = do(engine, http.MethodPut, "/api/v1/enquiries/"+uuid.NewString(), `{"comments":"No GST"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreatePublicValidation(t *testing.T) {
	rec, body := do(newTestEngine(), http.MethodPost, "/api/v1/enquiries/public", `{"mobileNumber":"9876543210"}`)
	if rec.Code != http.StatusBadRequest || body["error"] != "validation failed" {
		t.Fatalf("unexpected response %d %v", rec.Code, body)
	}
	details, _ := body["details"].(map[string]any)
	if details["DisplayName"] != "required" {
		t.Fatalf("unexpected details %v", body["details"])
	}
}

func TestLockStatusShape(t *testing.T) {
	old := domain.Enquiry{ID: uuid.New(), Staff: domain.Unclaimed(), Date: time.Now().Add(-72 * time.Hour)}
	rec, body := do(newTestEngine(old), http.MethodGet, "/api/v1/enquiries/staff-lock-status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["locked"] != true || body["unassigned_old_enquiries"] != float64(1) || body["assigned_enquiries"] != float64(0) {
		t.Fatalf("unexpected body %v", body)
	}
}
