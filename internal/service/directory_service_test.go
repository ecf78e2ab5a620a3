package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicvoice/complaint-service/internal/domain"
)

func TestDirectoryReflectsLedgerRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	c := h.file(t, false)
	_, err := h.complaintSvc.UpdateStatus(ctx, h.roads, c.ID, StatusUpdateInput{Status: domain.StatusResolved})
	require.NoError(t, err)
	_, err = h.engagementSvc.Rate(ctx, h.citizen, c.ID, 3)
	require.NoError(t, err)

	officers, err := NewDirectoryService(h.users).Departments(ctx)
	require.NoError(t, err)
	require.Len(t, officers, 2)
	assert.Equal(t, h.roads.ID, officers[0].ID)
	assert.InDelta(t, 3.0, officers[0].AverageRating, 1e-9)
	assert.Equal(t, 1, officers[0].TotalRatings)
	assert.Equal(t, h.lighting.ID, officers[1].ID)
	assert.Zero(t, officers[1].TotalRatings)
}
