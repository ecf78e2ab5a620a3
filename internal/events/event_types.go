package events

import (
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintFiled        EventType = "complaint.filed"
	EventComplaintStatusChange EventType = "complaint.status_changed"
	EventComplaintEscalated    EventType = "complaint.escalated"
	EventVoteCast              EventType = "complaint.vote_cast"
	EventComplaintRated        EventType = "complaint.rated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id,omitempty"`
	Name string      `json:"name"`
	Role domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaint_id"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload"`
}

// ComplaintFiledPayload payload.
type ComplaintFiledPayload struct {
	CitizenID  string            `json:"citizen_id"`
	Department domain.Department `json:"department"`
	Emergency  bool              `json:"emergency"`
	Title      string            `json:"title"`
}

// StatusChangedPayload payload. Complaint is a snapshot taken after the change committed.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Note      string                 `json:"note,omitempty"`
	Automatic bool                   `json:"automatic"`
	Complaint *domain.Complaint      `json:"-"`
}

// EscalatedPayload payload.
type EscalatedPayload struct {
	OldLevel   int               `json:"old_level"`
	NewLevel   int               `json:"new_level"`
	Department domain.Department `json:"department"`
	CitizenID  string            `json:"citizen_id"`
	Title      string            `json:"title"`
}

// VoteCastPayload payload. Voted is false for an un-vote.
type VoteCastPayload struct {
	VoterID       string `json:"voter_id"`
	Voted         bool   `json:"voted"`
	Votes         int    `json:"votes"`
	PriorityScore int    `json:"priority_score"`
}

// RatedPayload payload.
type RatedPayload struct {
	Rating     int     `json:"rating"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}
