// Package priority holds the pure ranking and escalation rules for complaints.
package priority

import (
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
)

const (
	votePoints     = 2
	emergencyBonus = 20

	// SeniorOfficerAfter and CommissionerAfter are strict lower bounds.
	SeniorOfficerAfter = 48 * time.Hour
	CommissionerAfter  = 120 * time.Hour
)

// Score returns votes*2 plus 20 for emergencies.
func Score(votes int, emergency bool) int {
	score := votes * votePoints
	if emergency {
		score += emergencyBonus
	}
	return score
}

// EscalationLevel returns 0, 1 or 2 for the time elapsed since createdAt.
// Resolved complaints are always level 0.
func EscalationLevel(createdAt time.Time, status domain.ComplaintStatus, now time.Time) int {
	if status == domain.StatusResolved {
		return domain.EscalationNone
	}
	elapsed := now.Sub(createdAt)
	switch {
	case elapsed > CommissionerAfter:
		return domain.EscalationCommissioner
	case elapsed > SeniorOfficerAfter:
		return domain.EscalationSeniorOfficer
	default:
		return domain.EscalationNone
	}
}

// IsOverdue reports whether the SLA deadline passed for a complaint that can still go Overdue.
func IsOverdue(status domain.ComplaintStatus, deadline, now time.Time) bool {
	if status == domain.StatusResolved || status == domain.StatusEscalated || status == domain.StatusOverdue {
		return false
	}
	return !deadline.IsZero() && deadline.Before(now)
}

// ResolutionHours is the elapsed time between filing and resolution in hours.
func ResolutionHours(createdAt, resolvedAt time.Time) float64 {
	return resolvedAt.Sub(createdAt).Hours()
}
