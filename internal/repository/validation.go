package repository

import (
	"strings"

	"github.com/civicvoice/complaint-service/internal/domain"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// ValidateComplaint enforces the storage-boundary invariants before any write.
func ValidateComplaint(c *domain.Complaint) error {
	details := map[string]any{}

	if strings.TrimSpace(c.ID) == "" {
		details["id"] = "required"
	}
	if strings.TrimSpace(c.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(c.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(c.CitizenID) == "" {
		details["citizen_id"] = "required"
	}
	if !c.Department.Valid() {
		details["department"] = "unknown department"
	}
	if !c.Status.Valid() {
		details["status"] = "unknown status"
	}
	if c.Votes < 0 {
		details["votes"] = "must be non-negative"
	}
	if c.Votes != len(c.VotedBy) {
		details["voted_by"] = "must match vote count"
	} else if hasDuplicates(c.VotedBy) {
		details["voted_by"] = "duplicate voter"
	}
	if c.EscalationLevel < domain.EscalationNone || c.EscalationLevel > domain.EscalationCommissioner {
		details["escalation_level"] = "must be 0, 1 or 2"
	}
	if c.Status == domain.StatusResolved && c.EscalationLevel != domain.EscalationNone {
		details["escalation_level"] = "must be 0 when resolved"
	}
	if c.SatisfactionRating != nil && (*c.SatisfactionRating < 1 || *c.SatisfactionRating > 5) {
		details["satisfaction_rating"] = "must be between 1 and 5"
	}
	if lat := c.Location.Lat; lat != nil && (*lat < -90 || *lat > 90) {
		details["lat"] = "must be between -90 and 90"
	}
	if lng := c.Location.Lng; lng != nil && (*lng < -180 || *lng > 180) {
		details["lng"] = "must be between -180 and 180"
	}
	if c.SLADeadline.IsZero() {
		details["sla_deadline"] = "required"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid complaint", details)
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
