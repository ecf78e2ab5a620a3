package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/repository"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// Clock supplies the current time. Tests substitute a simulated clock.
type Clock func() time.Time

// Now returns the clock reading in UTC, falling back to the wall clock.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, clock Clock, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = clock.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func eventActor(actor *domain.Actor) events.Actor {
	if actor == nil {
		return events.Actor{Name: systemActor}
	}
	return events.Actor{ID: actor.ID, Name: actor.DisplayName(), Role: actor.Role}
}

func requireActor(actor *domain.Actor) error {
	if actor == nil || actor.ID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func complaintError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	return err
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
