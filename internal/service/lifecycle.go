package service

import (
	"fmt"
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/priority"
)

const (
	systemActor  = "System"
	citizenActor = "Citizen"

	msgFiled          = "Complaint filed by citizen"
	msgAssigned       = "Assigned to %s"
	msgWorkStarted    = "Work started - status changed to In Progress"
	msgResolved       = "Complaint marked as Resolved"
	msgSeniorOfficer  = "Escalated to Senior Officer (48h SLA breach)"
	msgCommissioner   = "Escalated to Commissioner (5-day breach)"
	msgOverdue        = "SLA expired - marked Overdue"
	msgRated          = "Citizen rated resolution: %d/5"
	maxNoteLength     = 500
	maxTitleLength    = 150
	minTitleLength    = 5
	maxDescLength     = 2000
	minDescLength     = 10
	defaultPageLength = 20
)

// Manual transitions. Overdue and Escalated are only entered by the time rules.
var allowedTransitions = map[domain.ComplaintStatus][]domain.ComplaintStatus{
	domain.StatusPending:    {domain.StatusInProgress, domain.StatusResolved},
	domain.StatusInProgress: {domain.StatusResolved},
	domain.StatusOverdue:    {domain.StatusInProgress, domain.StatusResolved},
	domain.StatusEscalated:  {domain.StatusInProgress, domain.StatusResolved},
	domain.StatusResolved:   {},
}

func isValidTransition(current, next domain.ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func isManualTarget(status domain.ComplaintStatus) bool {
	return status == domain.StatusInProgress || status == domain.StatusResolved
}

// timeOutcome describes what applyTimeRules changed.
type timeOutcome struct {
	changed   bool
	oldLevel  int
	newLevel  int
	oldStatus domain.ComplaintStatus
	newStatus domain.ComplaintStatus
}

func (o timeOutcome) escalated() bool {
	return o.newLevel > o.oldLevel
}

func (o timeOutcome) statusChanged() bool {
	return o.oldStatus != o.newStatus
}

// applyTimeRules advances escalation first and SLA expiry second, as of now.
// The stored escalation level never decreases except through resolution.
func applyTimeRules(c *domain.Complaint, now time.Time) timeOutcome {
	out := timeOutcome{
		oldLevel:  c.EscalationLevel,
		newLevel:  c.EscalationLevel,
		oldStatus: c.Status,
		newStatus: c.Status,
	}

	if c.Status == domain.StatusResolved {
		if c.EscalationLevel != domain.EscalationNone {
			c.EscalationLevel = domain.EscalationNone
			out.newLevel = domain.EscalationNone
			out.changed = true
		}
		return out
	}

	level := priority.EscalationLevel(c.CreatedAt, c.Status, now)
	if level > c.EscalationLevel {
		if c.EscalationLevel < domain.EscalationSeniorOfficer {
			c.Log(msgSeniorOfficer, systemActor, now)
		}
		if level == domain.EscalationCommissioner {
			c.Status = domain.StatusEscalated
			c.Log(msgCommissioner, systemActor, now)
		}
		c.EscalationLevel = level
		out.newLevel = level
		out.changed = true
	}

	if priority.IsOverdue(c.Status, c.SLADeadline, now) {
		c.Status = domain.StatusOverdue
		c.Log(msgOverdue, systemActor, now)
		out.changed = true
	}

	out.newStatus = c.Status
	return out
}

// applyTransition moves c to next on behalf of actor. The caller has already validated the move.
func applyTransition(c *domain.Complaint, actor *domain.Actor, next domain.ComplaintStatus, note string, now time.Time) {
	name := actor.DisplayName()
	c.Status = next

	switch next {
	case domain.StatusInProgress:
		if c.AssignedTo == nil {
			assignee := actor.ID
			c.AssignedTo = &assignee
			c.Log(fmt.Sprintf(msgAssigned, name), name, now)
		}
		c.Log(msgWorkStarted, name, now)
	case domain.StatusResolved:
		resolvedAt := now
		hours := priority.ResolutionHours(c.CreatedAt, now)
		c.ResolvedAt = &resolvedAt
		c.ResolutionTime = &hours
		c.EscalationLevel = domain.EscalationNone
		c.Log(msgResolved, name, now)
	}

	if note != "" {
		c.Log(note, name, now)
	}
	c.UpdatedAt = now
}

// canTransition reports whether actor may change status on a complaint owned by dept.
func canTransition(actor *domain.Actor, dept domain.Department) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleDepartment:
		return actor.Department == dept
	default:
		return false
	}
}
