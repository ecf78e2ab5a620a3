package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/civicvoice/complaint-service/internal/domain"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to domain.ComplaintStatus
		want     bool
	}{
		{domain.StatusPending, domain.StatusInProgress, true},
		{domain.StatusPending, domain.StatusResolved, true},
		{domain.StatusInProgress, domain.StatusResolved, true},
		{domain.StatusInProgress, domain.StatusPending, false},
		{domain.StatusOverdue, domain.StatusInProgress, true},
		{domain.StatusEscalated, domain.StatusResolved, true},
		{domain.StatusResolved, domain.StatusInProgress, false},
		{domain.StatusResolved, domain.StatusResolved, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestApplyTimeRulesBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    time.Duration
		status     domain.ComplaintStatus
		wantLevel  int
		wantStatus domain.ComplaintStatus
	}{
		{"fresh", time.Hour, domain.StatusPending, 0, domain.StatusPending},
		{"exactly 48h", 48 * time.Hour, domain.StatusPending, 0, domain.StatusPending},
		{"just past 48h", 48*time.Hour + time.Second, domain.StatusPending, 1, domain.StatusOverdue},
		{"exactly 120h", 120 * time.Hour, domain.StatusInProgress, 1, domain.StatusOverdue},
		{"past 120h", 120*time.Hour + time.Second, domain.StatusInProgress, 2, domain.StatusEscalated},
		{"resolved late", 300 * time.Hour, domain.StatusResolved, 0, domain.StatusResolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &domain.Complaint{
				Status:      tt.status,
				CreatedAt:   epoch,
				SLADeadline: epoch.Add(48 * time.Hour),
			}
			applyTimeRules(c, epoch.Add(tt.elapsed))
			assert.Equal(t, tt.wantLevel, c.EscalationLevel)
			assert.Equal(t, tt.wantStatus, c.Status)
		})
	}
}

func TestApplyTimeRulesNeverLowersLevel(t *testing.T) {
	c := &domain.Complaint{
		Status:          domain.StatusEscalated,
		EscalationLevel: domain.EscalationCommissioner,
		CreatedAt:       epoch,
		SLADeadline:     epoch.Add(48 * time.Hour),
	}
	out := applyTimeRules(c, epoch.Add(time.Hour))
	assert.False(t, out.changed)
	assert.Equal(t, domain.EscalationCommissioner, c.EscalationLevel)
}

func TestApplyTimeRulesClearsLevelOnResolved(t *testing.T) {
	c := &domain.Complaint{Status: domain.StatusResolved, EscalationLevel: 1, CreatedAt: epoch}
	out := applyTimeRules(c, epoch.Add(200*time.Hour))
	assert.True(t, out.changed)
	assert.Equal(t, 0, c.EscalationLevel)
	assert.Empty(t, c.ActivityLog)
}

func TestApplyTransitionKeepsExistingAssignee(t *testing.T) {
	previous := "officer-1"
	c := &domain.Complaint{Status: domain.StatusOverdue, AssignedTo: &previous, CreatedAt: epoch}
	actor := &domain.Actor{ID: "officer-2", Name: "Second Officer", Role: domain.RoleDepartment}

	applyTransition(c, actor, domain.StatusInProgress, "", epoch.Add(time.Hour))
	assert.Equal(t, "officer-1", *c.AssignedTo)
	assert.Equal(t, []string{msgWorkStarted}, messages(c))
}
