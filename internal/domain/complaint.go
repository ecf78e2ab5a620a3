package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusOverdue    ComplaintStatus = "Overdue"
	StatusEscalated  ComplaintStatus = "Escalated"
)

// ComplaintStatuses lists every valid status.
var ComplaintStatuses = []ComplaintStatus{
	StatusPending,
	StatusInProgress,
	StatusResolved,
	StatusOverdue,
	StatusEscalated,
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Escalation tiers.
const (
	EscalationNone          = 0
	EscalationSeniorOfficer = 1
	EscalationCommissioner  = 2
)

// Image references an uploaded attachment held by the attachment store.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Format   string `json:"format,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
}

// Location is an optional geo-coordinate with a free-form address.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// ActivityEntry is one append-only audit trail record.
type ActivityEntry struct {
	Message string    `json:"message"`
	Actor   string    `json:"actor"`
	Time    time.Time `json:"time"`
}

// Complaint is the aggregate for municipal service complaints.
type Complaint struct {
	ID                 string
	Title              string
	Description        string
	Department         Department
	City               string
	Location           Location
	Tags               []string
	Images             []Image
	CitizenID          string
	AssignedTo         *string
	Status             ComplaintStatus
	Emergency          bool
	Votes              int
	VotedBy            []string
	PriorityScore      int
	EscalationLevel    int
	SLADeadline        time.Time
	ResolvedAt         *time.Time
	ResolutionTime     *float64
	SatisfactionRating *int
	RatedBy            *string
	ActivityLog        []ActivityEntry
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasVoted reports whether actorID is in VotedBy.
func (c *Complaint) HasVoted(actorID string) bool {
	for _, id := range c.VotedBy {
		if id == actorID {
			return true
		}
	}
	return false
}

// Log appends an activity entry.
func (c *Complaint) Log(message, actor string, at time.Time) {
	c.ActivityLog = append(c.ActivityLog, ActivityEntry{Message: message, Actor: actor, Time: at})
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (c *Complaint) Clone() *Complaint {
	if c == nil {
		return nil
	}
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.Images = append([]Image(nil), c.Images...)
	out.VotedBy = append([]string(nil), c.VotedBy...)
	out.ActivityLog = append([]ActivityEntry(nil), c.ActivityLog...)
	if c.AssignedTo != nil {
		v := *c.AssignedTo
		out.AssignedTo = &v
	}
	if c.ResolvedAt != nil {
		v := *c.ResolvedAt
		out.ResolvedAt = &v
	}
	if c.ResolutionTime != nil {
		v := *c.ResolutionTime
		out.ResolutionTime = &v
	}
	if c.SatisfactionRating != nil {
		v := *c.SatisfactionRating
		out.SatisfactionRating = &v
	}
	if c.RatedBy != nil {
		v := *c.RatedBy
		out.RatedBy = &v
	}
	if c.Location.Lat != nil {
		v := *c.Location.Lat
		out.Location.Lat = &v
	}
	if c.Location.Lng != nil {
		v := *c.Location.Lng
		out.Location.Lng = &v
	}
	return &out
}
