package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/priority"
	"github.com/civicvoice/complaint-service/internal/repository"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// EngagementService handles votes and satisfaction ratings.
type EngagementService struct {
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// EngagementDependencies bundles collaborators for the engagement service.
type EngagementDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Dispatcher    events.Dispatcher
	Clock         Clock
	Logger        *zap.Logger
}

// VoteResult is the outcome of a vote toggle.
type VoteResult struct {
	Votes         int
	PriorityScore int
	Voted         bool
}

// NewEngagementService constructs the service.
func NewEngagementService(deps EngagementDependencies) *EngagementService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementService{
		complaints: deps.ComplaintRepo,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// ToggleVote adds the actor's vote, or removes it when already present.
func (s *EngagementService) ToggleVote(ctx context.Context, actor *domain.Actor, id string) (*VoteResult, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var voted bool
	updated, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) error {
		if c.HasVoted(actor.ID) {
			c.VotedBy = removeVoter(c.VotedBy, actor.ID)
			c.Votes = len(c.VotedBy)
			voted = false
		} else {
			c.VotedBy = append(c.VotedBy, actor.ID)
			c.Votes = len(c.VotedBy)
			voted = true
		}
		c.PriorityScore = priority.Score(c.Votes, c.Emergency)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, complaintError(err, id)
	}

	result := &VoteResult{Votes: updated.Votes, PriorityScore: updated.PriorityScore, Voted: voted}
	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:        events.EventVoteCast,
		ComplaintID: id,
		Actor:       eventActor(actor),
		Timestamp:   now,
		Payload: events.VoteCastPayload{
			VoterID:       actor.ID,
			Voted:         voted,
			Votes:         result.Votes,
			PriorityScore: result.PriorityScore,
		},
	})
	return result, nil
}

// Rate records the filer's one-time satisfaction rating on a resolved complaint.
func (s *EngagementService) Rate(ctx context.Context, actor *domain.Actor, id string, rating int) (*domain.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	now := s.clock.Now()
	updated, err := s.complaints.Update(ctx, id, func(c *domain.Complaint) error {
		if c.Status != domain.StatusResolved {
			return apperrors.NewInvalidState("only resolved complaints can be rated", map[string]any{"status": c.Status})
		}
		if c.SatisfactionRating != nil {
			return apperrors.NewAlreadyRated(id)
		}
		if c.CitizenID != actor.ID {
			return apperrors.NewForbidden("only the filing citizen may rate")
		}
		value := rating
		rater := actor.ID
		c.SatisfactionRating = &value
		c.RatedBy = &rater
		c.Log(fmt.Sprintf(msgRated, rating), actor.DisplayName(), now)
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, complaintError(err, id)
	}

	s.logger.Info("complaint rated", zap.String("complaint_id", id), zap.Int("rating", rating))
	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:        events.EventComplaintRated,
		ComplaintID: id,
		Actor:       eventActor(actor),
		Timestamp:   now,
		Payload: events.RatedPayload{
			Rating:     rating,
			AssigneeID: updated.AssignedTo,
		},
	})
	return updated, nil
}

func removeVoter(voters []string, id string) []string {
	out := voters[:0]
	for _, v := range voters {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
