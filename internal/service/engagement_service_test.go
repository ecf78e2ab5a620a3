package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/priority"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

func (h *harness) resolve(t *testing.T, c *domain.Complaint) {
	t.Helper()
	ctx := context.Background()
	_, err := h.complaintSvc.UpdateStatus(ctx, h.roads, c.ID, StatusUpdateInput{Status: domain.StatusInProgress})
	require.NoError(t, err)
	h.clock.Advance(3 * time.Hour)
	_, err = h.complaintSvc.UpdateStatus(ctx, h.roads, c.ID, StatusUpdateInput{Status: domain.StatusResolved})
	require.NoError(t, err)
}

func TestVoteTally(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.file(t, false)

	voters := []*domain.Actor{
		h.addActor(t, &domain.Actor{Name: "A", Role: domain.RoleCitizen}),
		h.addActor(t, &domain.Actor{Name: "B", Role: domain.RoleCitizen}),
		h.addActor(t, &domain.Actor{Name: "C", Role: domain.RoleCitizen}),
	}
	var last *VoteResult
	for _, v := range voters {
		result, err := h.engagementSvc.ToggleVote(ctx, v, c.ID)
		require.NoError(t, err)
		assert.True(t, result.Voted)
		last = result
	}
	assert.Equal(t, 3, last.Votes)
	assert.Equal(t, 6, last.PriorityScore)

	result, err := h.engagementSvc.ToggleVote(ctx, voters[1], c.ID)
	require.NoError(t, err)
	assert.False(t, result.Voted)
	assert.Equal(t, 2, result.Votes)
	assert.Equal(t, 4, result.PriorityScore)

	stored, err := h.complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{voters[0].ID, voters[2].ID}, stored.VotedBy)
	assert.Equal(t, priority.Score(stored.Votes, stored.Emergency), stored.PriorityScore)
}

func TestVoteToggleIsIdempotentPerActor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.file(t, true)
	voter := h.addActor(t, &domain.Actor{Name: "Neighbour", Role: domain.RoleCitizen})

	first, err := h.engagementSvc.ToggleVote(ctx, voter, c.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Votes: 1, PriorityScore: 22, Voted: true}, *first)

	second, err := h.engagementSvc.ToggleVote(ctx, voter, c.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Votes: 0, PriorityScore: 20, Voted: false}, *second)

	third, err := h.engagementSvc.ToggleVote(ctx, voter, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *third)

	assert.Equal(t, 10, h.points(t, voter), "points are awarded per vote and never deducted")
}

func TestConcurrentVotesAreLinearizable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.file(t, false)

	const voters = 40
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := &domain.Actor{ID: fmt.Sprintf("voter-%d", i), Name: "voter", Role: domain.RoleCitizen}
			_, err := h.engagementSvc.ToggleVote(ctx, actor, c.ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := h.complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, stored.Votes)
	assert.Len(t, stored.VotedBy, voters)
	assert.Equal(t, voters*2, stored.PriorityScore)
}

func TestVoteUnknownComplaint(t *testing.T) {
	h := newHarness(t)
	_, err := h.engagementSvc.ToggleVote(context.Background(), h.citizen, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestRatingUpdatesAssigneeAverage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.roads.AverageRating = 4.0
	h.roads.TotalRatings = 9
	require.NoError(t, h.users.Create(ctx, h.roads))

	c := h.file(t, false)
	h.resolve(t, c)

	rated, err := h.engagementSvc.Rate(ctx, h.citizen, c.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, rated.SatisfactionRating)
	assert.Equal(t, 5, *rated.SatisfactionRating)
	assert.Equal(t, "Citizen rated resolution: 5/5", rated.ActivityLog[len(rated.ActivityLog)-1].Message)

	officer, err := h.users.GetByID(ctx, h.roads.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.1, officer.AverageRating, 1e-9)
	assert.Equal(t, 10, officer.TotalRatings)
}

func TestRatingIsWriteOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c := h.file(t, false)
	h.resolve(t, c)

	_, err := h.engagementSvc.Rate(ctx, h.citizen, c.ID, 4)
	require.NoError(t, err)

	for _, actor := range []*domain.Actor{h.citizen, h.admin, h.roads} {
		_, err = h.engagementSvc.Rate(ctx, actor, c.ID, 1)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyRated), actor.Name)
	}

	stored, err := h.complaints.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, *stored.SatisfactionRating)
}

func TestRatingPreconditions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	open := h.file(t, false)
	resolved := h.file(t, false)
	h.resolve(t, resolved)
	stranger := h.addActor(t, &domain.Actor{Name: "Stranger", Role: domain.RoleCitizen})

	tests := []struct {
		name   string
		actor  *domain.Actor
		id     string
		rating int
		code   string
	}{
		{"out of range", h.citizen, resolved.ID, 6, apperrors.CodeValidation},
		{"zero", h.citizen, resolved.ID, 0, apperrors.CodeValidation},
		{"unknown", h.citizen, "missing", 3, apperrors.CodeNotFound},
		{"not resolved", h.citizen, open.ID, 3, apperrors.CodeInvalidState},
		{"not the filer", stranger, resolved.ID, 3, apperrors.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.engagementSvc.Rate(ctx, tt.actor, tt.id, tt.rating)
			assert.True(t, apperrors.HasCode(err, tt.code))
		})
	}

	stored, err := h.complaints.GetByID(ctx, resolved.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.SatisfactionRating)
}
