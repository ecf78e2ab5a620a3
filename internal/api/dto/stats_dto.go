package dto

import (
	"github.com/civicvoice/complaint-service/internal/repository"
	"github.com/civicvoice/complaint-service/internal/service"
)

// CityStatsResponse is the city dashboard projection.
type CityStatsResponse struct {
	Total              int                              `json:"total"`
	Pending            int                              `json:"pending"`
	InProgress         int                              `json:"in_progress"`
	Resolved           int                              `json:"resolved"`
	Overdue            int                              `json:"overdue"`
	Escalated          int                              `json:"escalated"`
	ResolutionRate     float64                          `json:"resolution_rate"`
	AvgResolutionHours *float64                         `json:"avg_resolution_hours"`
	AvgRating          *float64                         `json:"avg_rating"`
	TodayFiled         int                              `json:"today_filed"`
	TodayResolved      int                              `json:"today_resolved"`
	Departments        []repository.DepartmentBreakdown `json:"departments"`
}

// DepartmentStatsResponse is the projection for one department.
type DepartmentStatsResponse struct {
	Department         string   `json:"department"`
	Total              int      `json:"total"`
	Pending            int      `json:"pending"`
	InProgress         int      `json:"in_progress"`
	Resolved           int      `json:"resolved"`
	Overdue            int      `json:"overdue"`
	Escalated          int      `json:"escalated"`
	ResolutionRate     float64  `json:"resolution_rate"`
	AvgResolutionHours *float64 `json:"avg_resolution_hours"`
	AvgRating          *float64 `json:"avg_rating"`
}

// NewCityStatsResponse maps the city projection.
func NewCityStatsResponse(s *service.CityStats) CityStatsResponse {
	departments := s.Totals.ByDepartment
	if departments == nil {
		departments = []repository.DepartmentBreakdown{}
	}
	return CityStatsResponse{
		Total:              s.Totals.Total,
		Pending:            s.Totals.Pending,
		InProgress:         s.Totals.InProgress,
		Resolved:           s.Totals.Resolved,
		Overdue:            s.Totals.Overdue,
		Escalated:          s.Totals.Escalated,
		ResolutionRate:     s.ResolutionRate,
		AvgResolutionHours: s.Totals.AvgResolutionHours,
		AvgRating:          s.Totals.AvgRating,
		TodayFiled:         s.TodayFiled,
		TodayResolved:      s.TodayResolved,
		Departments:        departments,
	}
}

// NewDepartmentStatsResponse maps the department projection.
func NewDepartmentStatsResponse(s *service.DepartmentStats) DepartmentStatsResponse {
	return DepartmentStatsResponse{
		Department:         string(s.Department),
		Total:              s.Totals.Total,
		Pending:            s.Totals.Pending,
		InProgress:         s.Totals.InProgress,
		Resolved:           s.Totals.Resolved,
		Overdue:            s.Totals.Overdue,
		Escalated:          s.Totals.Escalated,
		ResolutionRate:     s.ResolutionRate,
		AvgResolutionHours: s.Totals.AvgResolutionHours,
		AvgRating:          s.Totals.AvgRating,
	}
}
