package domain

import "time"

// NotificationType tags the reason a notification was created.
type NotificationType string

const (
	NotificationStatusUpdate  NotificationType = "status_update"
	NotificationNewComplaint  NotificationType = "new_complaint"
	NotificationEscalation    NotificationType = "escalation"
	NotificationResolution    NotificationType = "resolution"
	NotificationRatingRequest NotificationType = "rating_request"
	NotificationSLAWarning    NotificationType = "sla_warning"
)

// Notification is a per-actor inbox message.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Message     string
	ComplaintID *string
	Read        bool
	Icon        string
	CreatedAt   time.Time
}
