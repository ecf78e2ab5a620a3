package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/delivery"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/realtime"
	"github.com/civicvoice/complaint-service/internal/repository"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// NotificationService persists inbox notifications and fans them out to channels.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	publisher     realtime.Publisher
	queue         delivery.Queue
	cfg           config.NotificationConfig
	clock         Clock
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators for the fan-out.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Publisher        realtime.Publisher
	Queue            delivery.Queue
	Config           config.NotificationConfig
	Clock            Clock
	Logger           *zap.Logger
}

// NotifyInput describes one notification.
type NotifyInput struct {
	RecipientID string
	Type        domain.NotificationType
	Title       string
	Message     string
	ComplaintID *string
}

// Inbox is one page of an actor's notifications.
type Inbox struct {
	Notifications []domain.Notification
	Unread        int
}

// StatusDelta is broadcast on a department channel after a transition.
type StatusDelta struct {
	ID            string                 `json:"id"`
	Status        domain.ComplaintStatus `json:"status"`
	PriorityScore int                    `json:"priority_score"`
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = realtime.Nop{}
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		publisher:     publisher,
		queue:         deps.Queue,
		cfg:           deps.Config,
		clock:         deps.Clock,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventComplaintStatusChange, n.handleStatusChanged)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	complaint := payload.Complaint
	if complaint == nil {
		return fmt.Errorf("status change for %s carries no snapshot", event.ComplaintID)
	}

	complaintID := complaint.ID
	if _, err := n.Notify(ctx, NotifyInput{
		RecipientID: complaint.CitizenID,
		Type:        notificationTypeFor(complaint.Status),
		Title:       fmt.Sprintf("Complaint %s", complaint.Status),
		Message:     fmt.Sprintf("Your complaint \"%s\" is now %s", truncate(complaint.Title, 60), complaint.Status),
		ComplaintID: &complaintID,
	}); err != nil {
		return err
	}

	delta := StatusDelta{ID: complaint.ID, Status: complaint.Status, PriorityScore: complaint.PriorityScore}
	if err := n.publisher.Publish(ctx, realtime.DepartmentChannel(complaint.Department), realtime.Message{
		Event: realtime.EventComplaintUpdated,
		Data:  delta,
	}); err != nil {
		n.logger.Warn("department broadcast failed",
			zap.String("complaint_id", complaint.ID),
			zap.String("department", string(complaint.Department)),
			zap.Error(err))
	}

	n.dispatchSideChannels(complaint.Clone())
	return nil
}

// Notify persists a notification and pushes it on the recipient's private channel.
// Push failures are logged; the stored notification is still returned.
func (n *NotificationService) Notify(ctx context.Context, input NotifyInput) (*domain.Notification, error) {
	if input.RecipientID == "" {
		return nil, apperrors.NewValidationError("recipient required", nil)
	}
	notification := &domain.Notification{
		ID:          uuid.NewString(),
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Title:       input.Title,
		Message:     input.Message,
		ComplaintID: input.ComplaintID,
		Icon:        iconFor(input.Type),
		CreatedAt:   n.clock.Now(),
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	if err := n.publisher.Publish(ctx, realtime.UserChannel(input.RecipientID), realtime.Message{
		Event: realtime.EventNotificationNew,
		Data:  notification,
	}); err != nil {
		n.logger.Warn("notification push failed",
			zap.String("notification_id", notification.ID),
			zap.String("recipient_id", input.RecipientID),
			zap.Error(err))
	}
	return notification, nil
}

// ListMine returns the actor's newest notifications with the unread count.
func (n *NotificationService) ListMine(ctx context.Context, actor *domain.Actor, limit, offset int) (*Inbox, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 30
	}
	items, err := n.notifications.ListByRecipient(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := n.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: items, Unread: unread}, nil
}

// MarkRead marks one of the actor's notifications read.
func (n *NotificationService) MarkRead(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := n.notifications.MarkRead(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// MarkAllRead marks every unread notification of the actor read and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, actor *domain.Actor) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	return n.notifications.MarkAllRead(ctx, actor.ID)
}

// dispatchSideChannels enqueues email and SMS intents on a detached goroutine.
// Nothing here is reported back to the transition that triggered it.
func (n *NotificationService) dispatchSideChannels(complaint *domain.Complaint) {
	if n.queue == nil || n.users == nil || (!n.cfg.EnableEmail && !n.cfg.EnableSMS) {
		return
	}
	go func() {
		ctx := context.Background()
		citizen, err := n.users.GetByID(ctx, complaint.CitizenID)
		if err != nil {
			n.logger.Warn("side-channel lookup failed",
				zap.String("complaint_id", complaint.ID),
				zap.String("citizen_id", complaint.CitizenID),
				zap.Error(err))
			return
		}

		now := n.clock.Now()
		if n.cfg.EnableEmail && citizen.Email != "" {
			body, err := renderStatusEmail(citizen, complaint, n.cfg.ClientURL)
			if err != nil {
				n.logger.Warn("render status email failed", zap.String("complaint_id", complaint.ID), zap.Error(err))
			} else {
				n.enqueue(ctx, delivery.Intent{
					ID:          uuid.NewString(),
					Channel:     delivery.ChannelEmail,
					Recipient:   citizen.Email,
					Subject:     fmt.Sprintf("[CivicVoice] Your complaint is now %s", complaint.Status),
					Body:        body,
					ComplaintID: complaint.ID,
					CreatedAt:   now,
				})
			}
		}
		if n.cfg.EnableSMS && citizen.Phone != "" {
			n.enqueue(ctx, delivery.Intent{
				ID:          uuid.NewString(),
				Channel:     delivery.ChannelSMS,
				Recipient:   citizen.Phone,
				Body:        statusSMS(complaint),
				ComplaintID: complaint.ID,
				CreatedAt:   now,
			})
		}
	}()
}

func (n *NotificationService) enqueue(ctx context.Context, intent delivery.Intent) {
	if err := n.queue.Enqueue(ctx, intent); err != nil {
		n.logger.Warn("enqueue delivery intent failed",
			zap.String("complaint_id", intent.ComplaintID),
			zap.String("channel", string(intent.Channel)),
			zap.Error(err))
	}
}

func notificationTypeFor(status domain.ComplaintStatus) domain.NotificationType {
	switch status {
	case domain.StatusResolved:
		return domain.NotificationResolution
	case domain.StatusEscalated:
		return domain.NotificationEscalation
	case domain.StatusOverdue:
		return domain.NotificationSLAWarning
	default:
		return domain.NotificationStatusUpdate
	}
}

func iconFor(t domain.NotificationType) string {
	switch t {
	case domain.NotificationStatusUpdate:
		return "🔧"
	case domain.NotificationResolution:
		return "✅"
	case domain.NotificationEscalation:
		return "🚨"
	case domain.NotificationNewComplaint:
		return "⚡"
	case domain.NotificationSLAWarning:
		return "⏳"
	default:
		return "🔔"
	}
}
