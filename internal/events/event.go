// Package events is the catalogue of enquiry events modules publish and
// subscribe to. The bus itself lives in platform/events and is aliased here
// so modules import one package.
package events

import (
	"enquiry_intake_backend/platform/events"
	"enquiry_intake_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// EnquiryCreated is published when a new enquiry is stored, whatever its source.
type EnquiryCreated struct {
	BaseEvent
	EnquiryID    uuid.UUID `json:"enquiryId"`
	DisplayName  string    `json:"displayName"`
	MobileNumber string    `json:"mobileNumber"`
	Source       string    `json:"source"`
	Staff        string    `json:"staff"`
}

func (e EnquiryCreated) EventName() string { return "enquiries.enquiry.created" }

// EnquiryCommentChanged is published after an update changed the comments label.
// The notification module turns it into a WhatsApp template send and an ops email.
type EnquiryCommentChanged struct {
	BaseEvent
	EnquiryID      uuid.UUID `json:"enquiryId"`
	DisplayName    string    `json:"displayName"`
	MobileNumber   string    `json:"mobileNumber"`
	BusinessNature string    `json:"businessNature"`
	PreviousLabel  string    `json:"previousLabel"`
	Comment        string    `json:"comment"`
	TemplateKey    string    `json:"templateKey"`
	ChangedBy      string    `json:"changedBy"`
}

func (e EnquiryCommentChanged) EventName() string { return "enquiries.comment.changed" }

// CommentNotificationDue is published by the scheduler worker when a queued
// comment notification task is picked up.
type CommentNotificationDue struct {
	BaseEvent
	Notification EnquiryCommentChanged `json:"notification"`
}

func (e CommentNotificationDue) EventName() string { return "enquiries.comment.notification_due" }

// EnquiryStaffAssigned is published when a human staff member claimed an enquiry.
type EnquiryStaffAssigned struct {
	BaseEvent
	EnquiryID     uuid.UUID `json:"enquiryId"`
	Staff         string    `json:"staff"`
	PreviousStaff string    `json:"previousStaff"`
	AssignedBy    string    `json:"assignedBy"`
	MessagesSent  int       `json:"messagesSent"`
}

func (e EnquiryStaffAssigned) EventName() string { return "enquiries.staff.assigned" }

// WebhookReceived is published for every inbound provider webhook, including
// the ones that are ignored, so operators can watch the intake stream.
type WebhookReceived struct {
	BaseEvent
	WebhookType string `json:"webhookType"`
	Outcome     string `json:"outcome"`
	Mobile      string `json:"mobile,omitempty"`
}

func (e WebhookReceived) EventName() string { return "webhooks.whatsapp.received" }
