package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicvoice/complaint-service/internal/domain"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

func TestCityStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	old := h.file(t, false)
	h.clock.Advance(24 * time.Hour)
	h.file(t, true)
	_, err := h.complaintSvc.UpdateStatus(ctx, h.roads, old.ID, StatusUpdateInput{Status: domain.StatusResolved})
	require.NoError(t, err)

	stats, err := h.statsSvc.City(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Totals.Total)
	assert.Equal(t, 1, stats.Totals.Resolved)
	assert.InDelta(t, 50.0, stats.ResolutionRate, 1e-9)
	assert.Equal(t, 1, stats.TodayFiled)
	assert.Equal(t, 1, stats.TodayResolved)
	require.NotNil(t, stats.Totals.AvgResolutionHours)
	assert.InDelta(t, 24.0, *stats.Totals.AvgResolutionHours, 1e-9)
}

func TestDepartmentStatsAccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.file(t, false)

	stats, err := h.statsSvc.Department(ctx, h.roads, domain.DepartmentRoads)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Totals.Total)
	assert.Equal(t, domain.DepartmentRoads, stats.Department)

	_, err = h.statsSvc.Department(ctx, h.lighting, domain.DepartmentRoads)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = h.statsSvc.Department(ctx, h.citizen, domain.DepartmentRoads)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = h.statsSvc.Department(ctx, h.admin, "Fire")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
