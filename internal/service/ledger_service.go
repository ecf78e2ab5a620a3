package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/repository"
)

// LedgerService applies cross-actor side effects (civic points, assignee ratings) after the
// complaint mutation that caused them has committed.
type LedgerService struct {
	users  repository.UserRepository
	cfg    config.LifecycleConfig
	logger *zap.Logger
}

// LedgerDependencies bundles collaborators for the ledger.
type LedgerDependencies struct {
	UserRepo repository.UserRepository
	Config   config.LifecycleConfig
	Logger   *zap.Logger
}

// NewLedgerService constructs the ledger.
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{users: deps.UserRepo, cfg: deps.Config, logger: logger}
}

// RegisterHandlers subscribes the ledger to engagement events.
func (s *LedgerService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintFiled, s.handleFiled)
	dispatcher.Subscribe(events.EventVoteCast, s.handleVoteCast)
	dispatcher.Subscribe(events.EventComplaintRated, s.handleRated)
}

func (s *LedgerService) handleFiled(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintFiledPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	return s.award(ctx, payload.CitizenID, s.cfg.FilingPoints, event)
}

// Points are a one-way reward; un-votes deduct nothing.
func (s *LedgerService) handleVoteCast(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VoteCastPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if !payload.Voted {
		return nil
	}
	return s.award(ctx, payload.VoterID, s.cfg.VotePoints, event)
}

func (s *LedgerService) handleRated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if payload.AssigneeID == nil || *payload.AssigneeID == "" {
		return nil
	}
	actor, err := s.users.RecordRating(ctx, *payload.AssigneeID, payload.Rating)
	if err != nil {
		return fmt.Errorf("record rating for %s: %w", *payload.AssigneeID, err)
	}
	s.logger.Debug("assignee rating updated",
		zap.String("actor_id", actor.ID),
		zap.Float64("average_rating", actor.AverageRating),
		zap.Int("total_ratings", actor.TotalRatings))
	return nil
}

func (s *LedgerService) award(ctx context.Context, actorID string, points int, event events.Event) error {
	if actorID == "" || points == 0 {
		return nil
	}
	if err := s.users.AddPoints(ctx, actorID, points); err != nil {
		return fmt.Errorf("award %d points to %s for %s: %w", points, actorID, event.Type, err)
	}
	return nil
}
