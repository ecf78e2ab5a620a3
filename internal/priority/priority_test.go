package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/civicvoice/complaint-service/internal/domain"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		votes     int
		emergency bool
		want      int
	}{
		{name: "no votes", votes: 0, emergency: false, want: 0},
		{name: "emergency only", votes: 0, emergency: true, want: 20},
		{name: "three votes", votes: 3, emergency: false, want: 6},
		{name: "votes and emergency", votes: 4, emergency: true, want: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.votes, tt.emergency))
		})
	}
}

func TestEscalationLevel(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		status  domain.ComplaintStatus
		want    int
	}{
		{name: "fresh", elapsed: time.Hour, status: domain.StatusPending, want: 0},
		{name: "exactly 48h stays level 0", elapsed: 48 * time.Hour, status: domain.StatusPending, want: 0},
		{name: "just past 48h", elapsed: 48*time.Hour + time.Second, status: domain.StatusInProgress, want: 1},
		{name: "exactly 120h stays level 1", elapsed: 120 * time.Hour, status: domain.StatusOverdue, want: 1},
		{name: "past 120h", elapsed: 121 * time.Hour, status: domain.StatusPending, want: 2},
		{name: "resolved late", elapsed: 500 * time.Hour, status: domain.StatusResolved, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscalationLevel(created, tt.status, created.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, IsOverdue(domain.StatusPending, past, now))
	assert.True(t, IsOverdue(domain.StatusInProgress, past, now))
	assert.False(t, IsOverdue(domain.StatusPending, future, now))
	assert.False(t, IsOverdue(domain.StatusResolved, past, now))
	assert.False(t, IsOverdue(domain.StatusEscalated, past, now))
	assert.False(t, IsOverdue(domain.StatusOverdue, past, now))
	assert.False(t, IsOverdue(domain.StatusPending, time.Time{}, now))
}

func TestResolutionHours(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	assert.InDelta(t, 30.5, ResolutionHours(created, created.Add(30*time.Hour+30*time.Minute)), 1e-9)
}
