// Package domain holds the enquiry model and the pure intake rules: message
// classification, the staff assignment lock and the comment templates.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source is the intake channel that created an enquiry.
type Source string

const (
	SourcePublicForm      Source = "public_form"
	SourceWhatsAppWebhook Source = "whatsapp_webhook"
	SourceStaffEntry      Source = "staff_entry"
)

// GSTFlag is the normalised gst column.
type GSTFlag string

const (
	GSTYes   GSTFlag = "Yes"
	GSTNo    GSTFlag = "No"
	GSTUnset GSTFlag = ""
)

// ParseGST accepts the spellings the forms send and folds everything else to unset.
func ParseGST(raw string) GSTFlag {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true":
		return GSTYes
	case "no", "n", "false":
		return GSTNo
	default:
		return GSTUnset
	}
}

// WhatsAppStatusReceived marks enquiries created from an inbound message.
const WhatsAppStatusReceived = "received"

// NotEligibleComment is the label that needs a business nature to render its template.
const NotEligibleComment = "Not Eligible"

// Enquiry is a lead for one prospective loan customer.
type Enquiry struct {
	ID                    uuid.UUID
	DisplayName           string
	UserName              *string
	MobileNumber          string
	SecondaryMobileNumber *string
	GST                   GSTFlag
	GSTStatus             *string
	BusinessType          *string
	BusinessNature        *string
	Source                Source

	WhatsAppChatID      *string
	WhatsAppMessageID   *string
	WhatsAppSenderName  *string
	WhatsAppMessageText *string
	WhatsAppStatus      *string

	Staff       Owner
	StaffLocked bool

	Comments           *string
	AdditionalComments *string

	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy *string
}

// CommentLabel is the comments value with nil read as empty.
func (e Enquiry) CommentLabel() string {
	if e.Comments == nil {
		return ""
	}
	return strings.TrimSpace(*e.Comments)
}

// BusinessNatureOr returns the business nature or fallback when none is stored.
func (e Enquiry) BusinessNatureOr(fallback string) string {
	if e.BusinessNature == nil || strings.TrimSpace(*e.BusinessNature) == "" {
		return fallback
	}
	return *e.BusinessNature
}

// IsOld reports whether the enquiry date lies more than a day before now.
func (e Enquiry) IsOld(now time.Time) bool {
	return e.Date.Before(now.Add(-OldEnquiryAge))
}
