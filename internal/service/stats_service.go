package service

import (
	"context"
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/repository"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// StatsService exposes the read-only aggregate projections.
type StatsService struct {
	complaints repository.ComplaintRepository
	clock      Clock
}

// NewStatsService constructs the service.
func NewStatsService(complaints repository.ComplaintRepository, clock Clock) *StatsService {
	return &StatsService{complaints: complaints, clock: clock}
}

// CityStats is the city-wide dashboard projection.
type CityStats struct {
	Totals         *repository.ComplaintStats
	ResolutionRate float64
	TodayFiled     int
	TodayResolved  int
}

// DepartmentStats is the projection for one department.
type DepartmentStats struct {
	Department     domain.Department
	Totals         *repository.ComplaintStats
	ResolutionRate float64
}

// City aggregates every complaint plus today's filing and resolution counts.
func (s *StatsService) City(ctx context.Context) (*CityStats, error) {
	all, err := s.complaints.Stats(ctx, repository.StatsFilter{})
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.clock.Now())
	filed, err := s.complaints.Stats(ctx, repository.StatsFilter{CreatedFrom: &today})
	if err != nil {
		return nil, err
	}
	resolved, err := s.complaints.Stats(ctx, repository.StatsFilter{ResolvedFrom: &today})
	if err != nil {
		return nil, err
	}

	return &CityStats{
		Totals:         all,
		ResolutionRate: all.ResolutionRate(),
		TodayFiled:     filed.Total,
		TodayResolved:  resolved.Total,
	}, nil
}

// Department aggregates one department. Department staff may only read their own.
func (s *StatsService) Department(ctx context.Context, actor *domain.Actor, dept domain.Department) (*DepartmentStats, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !dept.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": dept})
	}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleDepartment:
		if actor.Department != dept {
			return nil, apperrors.NewForbidden("not authorized for this department")
		}
	default:
		return nil, apperrors.NewForbidden("department statistics require staff access")
	}

	stats, err := s.complaints.Stats(ctx, repository.StatsFilter{Department: &dept})
	if err != nil {
		return nil, err
	}
	return &DepartmentStats{
		Department:     dept,
		Totals:         stats,
		ResolutionRate: stats.ResolutionRate(),
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
