package dto

import (
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID          string                  `json:"id"`
	Type        domain.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	ComplaintID *string                 `json:"complaint_id"`
	Read        bool                    `json:"read"`
	Icon        string                  `json:"icon"`
	CreatedAt   time.Time               `json:"created_at"`
}

// InboxResponse lists notifications with the unread count.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		ComplaintID: n.ComplaintID,
		Read:        n.Read,
		Icon:        n.Icon,
		CreatedAt:   n.CreatedAt,
	}
}
