package transport

import (
	"time"

	"enquiry_intake_backend/internal/enquiries/domain"
	"enquiry_intake_backend/internal/whatsapp"

	"github.com/google/uuid"
)

// CreateEnquiryRequest is the staff manual entry form.
type CreateEnquiryRequest struct {
	Date                  *string `json:"date,omitempty"`
	DisplayName           string  `json:"displayName" validate:"required,min=1,max=200"`
	UserName              *string `json:"userName,omitempty" validate:"omitempty,max=200"`
	MobileNumber          string  `json:"mobileNumber" validate:"required,mobile"`
	SecondaryMobileNumber *string `json:"secondaryMobileNumber,omitempty" validate:"omitempty,mobile"`
	GST                   string  `json:"gst" validate:"required,oneof=Yes No"`
	GSTStatus             *string `json:"gstStatus,omitempty" validate:"omitempty,max=100"`
	BusinessType          *string `json:"businessType,omitempty" validate:"omitempty,max=200"`
	BusinessNature        *string `json:"businessNature,omitempty" validate:"omitempty,max=200"`
	Staff                 string  `json:"staff" validate:"required,max=200"`
	Comments              string  `json:"comments" validate:"required,max=500"`
	AdditionalComments    *string `json:"additionalComments,omitempty" validate:"omitempty,max=2000"`
}

// PublicEnquiryRequest is the unauthenticated website form.
type PublicEnquiryRequest struct {
	DisplayName           string  `json:"displayName" validate:"required,min=1,max=200"`
	MobileNumber          string  `json:"mobileNumber" validate:"required,min=8,max=20"`
	SecondaryMobileNumber *string `json:"secondaryMobileNumber,omitempty" validate:"omitempty,max=20"`
	GST                   *string `json:"gst,omitempty" validate:"omitempty,max=10"`
	BusinessNature        *string `json:"businessNature,omitempty" validate:"omitempty,max=200"`
	Comments              *string `json:"comments,omitempty" validate:"omitempty,max=500"`
}

// UpdateEnquiryRequest is a partial update. Absent fields keep their stored
// value; an empty string clears an optional column.
type UpdateEnquiryRequest struct {
	Date                  *string `json:"date,omitempty"`
	DisplayName           *string `json:"displayName,omitempty" validate:"omitempty,max=200"`
	UserName              *string `json:"userName,omitempty" validate:"omitempty,max=200"`
	MobileNumber          *string `json:"mobileNumber,omitempty"`
	SecondaryMobileNumber *string `json:"secondaryMobileNumber,omitempty"`
	GST                   *string `json:"gst,omitempty"`
	GSTStatus             *string `json:"gstStatus,omitempty" validate:"omitempty,max=100"`
	BusinessType          *string `json:"businessType,omitempty" validate:"omitempty,max=200"`
	BusinessNature        *string `json:"businessNature,omitempty" validate:"omitempty,max=200"`
	Staff                 *string `json:"staff,omitempty" validate:"omitempty,max=200"`
	Comments              *string `json:"comments,omitempty" validate:"omitempty,max=500"`
	AdditionalComments    *string `json:"additionalComments,omitempty" validate:"omitempty,max=2000"`
}

// EnquiryResponse represents an enquiry in API responses.
type EnquiryResponse struct {
	ID                    uuid.UUID `json:"id"`
	Date                  time.Time `json:"date"`
	DisplayName           string    `json:"displayName"`
	UserName              *string   `json:"userName"`
	MobileNumber          string    `json:"mobileNumber"`
	SecondaryMobileNumber *string   `json:"secondaryMobileNumber"`
	GST                   string    `json:"gst"`
	GSTStatus             *string   `json:"gstStatus"`
	BusinessType          *string   `json:"businessType"`
	BusinessNature        *string   `json:"businessNature"`
	Source                string    `json:"source"`
	Staff                 string    `json:"staff"`
	StaffLocked           bool      `json:"staffLocked"`
	Comments              *string   `json:"comments"`
	AdditionalComments    *string   `json:"additionalComments"`
	WhatsAppChatID        *string   `json:"whatsappChatId,omitempty"`
	WhatsAppMessageID     *string   `json:"whatsappMessageId,omitempty"`
	WhatsAppSenderName    *string   `json:"whatsappSenderName,omitempty"`
	WhatsAppMessageText   *string   `json:"whatsappMessageText,omitempty"`
	WhatsAppStatus        *string   `json:"whatsappStatus,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
	UpdatedBy             *string   `json:"updatedBy,omitempty"`
}

// DispatchOutcome is the WhatsApp delivery summary the staff UI renders next
// to a saved enquiry.
type DispatchOutcome struct {
	WhatsAppSent          *bool   `json:"whatsapp_sent,omitempty"`
	WhatsAppError         *string `json:"whatsapp_error,omitempty"`
	WhatsAppQuotaExceeded bool    `json:"whatsapp_quota_exceeded,omitempty"`
	WhatsAppNotification  string  `json:"whatsapp_notification,omitempty"`
	WhatsAppMessageType   string  `json:"whatsapp_message_type,omitempty"`
	OutboundMessageID     string  `json:"whatsapp_message_id,omitempty"`
	NotificationQueued    bool    `json:"notification_queued,omitempty"`
}

// ApplyResult records one send on the outcome.
func (o *DispatchOutcome) ApplyResult(r whatsapp.Result) {
	sent := r.Success
	o.WhatsAppSent = &sent
	if r.Success {
		o.WhatsAppError = nil
		o.OutboundMessageID = r.ProviderMessageID
		return
	}
	msg := whatsapp.FriendlyError(r)
	o.WhatsAppError = &msg
	if r.QuotaExceeded || r.StatusCode == whatsapp.StatusQuotaExceeded {
		o.WhatsAppQuotaExceeded = true
		o.WhatsAppNotification = whatsapp.QuotaNotification
	}
}

// SavedEnquiryResponse is returned by create and update.
type SavedEnquiryResponse struct {
	EnquiryResponse
	DispatchOutcome
}

// EnquiryListItem is a list row annotated with the staff lock projection.
type EnquiryListItem struct {
	EnquiryResponse
	StaffAssignmentLocked bool                 `json:"staff_assignment_locked"`
	CanAssignStaff        bool                 `json:"can_assign_staff"`
	StaffDropdown         domain.DropdownState `json:"staff_dropdown"`
}

// EnquiryListResponse wraps the list together with the global lock.
type EnquiryListResponse struct {
	Items           []EnquiryListItem      `json:"items"`
	Total           int                    `json:"total"`
	StaffLockStatus domain.StaffLockStatus `json:"staff_lock_status"`
}

// LabelCount is one grouped count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	Total       int          `json:"total_enquiries"`
	GSTYes      int          `json:"gst_yes"`
	GSTNo       int          `json:"gst_no"`
	TopComments []LabelCount `json:"top_comments"`
	TopStaff    []LabelCount `json:"top_staff"`
}

// WebhookResult is the body of every webhook answer. The provider only looks
// at the 200; the fields are for operators tailing the logs.
type WebhookResult struct {
	Success               bool       `json:"success"`
	Message               string     `json:"message"`
	EnquiryID             *uuid.UUID `json:"enquiry_id,omitempty"`
	CustomerName          string     `json:"customer_name,omitempty"`
	MobileNumber          string     `json:"mobile_number,omitempty"`
	WhatsAppName          string     `json:"whatsapp_name,omitempty"`
	Intent                string     `json:"intent,omitempty"`
	WhatsAppSent          *bool      `json:"whatsapp_sent,omitempty"`
	WhatsAppError         *string    `json:"whatsapp_error,omitempty"`
	WhatsAppQuotaExceeded bool       `json:"whatsapp_quota_exceeded,omitempty"`
	Error                 string     `json:"error,omitempty"`
}

// ApplyResult records a reply or welcome send on the webhook result.
func (r *WebhookResult) ApplyResult(res whatsapp.Result) {
	var outcome DispatchOutcome
	outcome.ApplyResult(res)
	r.WhatsAppSent = outcome.WhatsAppSent
	r.WhatsAppError = outcome.WhatsAppError
	r.WhatsAppQuotaExceeded = outcome.WhatsAppQuotaExceeded
}

// WebhookStatusResponse answers GET on the webhook URL.
type WebhookStatusResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
	MethodReceived string `json:"method_received"`
	ExpectedMethod string `json:"expected_method"`
}

// ToResponse maps a domain enquiry onto its API shape.
func ToResponse(e domain.Enquiry) EnquiryResponse {
	return EnquiryResponse{
		ID:                    e.ID,
		Date:                  e.Date,
		DisplayName:           e.DisplayName,
		UserName:              e.UserName,
		MobileNumber:          e.MobileNumber,
		SecondaryMobileNumber: e.SecondaryMobileNumber,
		GST:                   string(e.GST),
		GSTStatus:             e.GSTStatus,
		BusinessType:          e.BusinessType,
		BusinessNature:        e.BusinessNature,
		Source:                string(e.Source),
		Staff:                 e.Staff.String(),
		StaffLocked:           e.StaffLocked,
		Comments:              e.Comments,
		AdditionalComments:    e.AdditionalComments,
		WhatsAppChatID:        e.WhatsAppChatID,
		WhatsAppMessageID:     e.WhatsAppMessageID,
		WhatsAppSenderName:    e.WhatsAppSenderName,
		WhatsAppMessageText:   e.WhatsAppMessageText,
		WhatsAppStatus:        e.WhatsAppStatus,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
		UpdatedBy:             e.UpdatedBy,
	}
}
