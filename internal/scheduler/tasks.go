package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskCommentNotification = "enquiries.comment_notification"

// CommentNotificationPayload carries a comment change to the worker.
type CommentNotificationPayload struct {
	EnquiryID      string    `json:"enquiryId"`
	DisplayName    string    `json:"displayName"`
	MobileNumber   string    `json:"mobileNumber"`
	BusinessNature string    `json:"businessNature,omitempty"`
	PreviousLabel  string    `json:"previousLabel,omitempty"`
	Comment        string    `json:"comment"`
	TemplateKey    string    `json:"templateKey"`
	ChangedBy      string    `json:"changedBy,omitempty"`
	ChangedAt      time.Time `json:"changedAt"`
	EventID        string    `json:"eventId,omitempty"`
}

func NewCommentNotificationTask(payload CommentNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommentNotification, data), nil
}

func ParseCommentNotificationPayload(task *asynq.Task) (CommentNotificationPayload, error) {
	var payload CommentNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CommentNotificationPayload{}, err
	}
	return payload, nil
}
