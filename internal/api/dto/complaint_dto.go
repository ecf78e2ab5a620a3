package dto

import (
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// LocationPayload is the optional geo position of a complaint.
type LocationPayload struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// ImagePayload references an attachment already stored by the attachment store.
type ImagePayload struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int64  `json:"bytes"`
}

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Department  domain.Department `json:"department"`
	Emergency   *bool             `json:"emergency"`
	Location    LocationPayload   `json:"location"`
	Tags        []string          `json:"tags"`
	Images      []ImagePayload    `json:"images"`
}

// ClassifyRequest payload.
type ClassifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.ComplaintStatus `json:"status"`
	Note   string                 `json:"note"`
}

// RateRequest payload.
type RateRequest struct {
	Rating int `json:"rating"`
}

// ActivityResponse is one activity log entry.
type ActivityResponse struct {
	Message string    `json:"message"`
	Actor   string    `json:"actor"`
	Time    time.Time `json:"time"`
}

// ComplaintResponse is the full complaint view.
type ComplaintResponse struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Department         domain.Department      `json:"department"`
	City               string                 `json:"city"`
	Location           LocationPayload        `json:"location"`
	Tags               []string               `json:"tags"`
	Images             []ImagePayload         `json:"images"`
	CitizenID          string                 `json:"citizen_id"`
	AssignedTo         *string                `json:"assigned_to"`
	Status             domain.ComplaintStatus `json:"status"`
	Emergency          bool                   `json:"emergency"`
	Votes              int                    `json:"votes"`
	VotedBy            []string               `json:"voted_by"`
	PriorityScore      int                    `json:"priority_score"`
	EscalationLevel    int                    `json:"escalation_level"`
	SLADeadline        time.Time              `json:"sla_deadline"`
	ResolvedAt         *time.Time             `json:"resolved_at"`
	ResolutionTime     *float64               `json:"resolution_time"`
	SatisfactionRating *int                   `json:"satisfaction_rating"`
	ActivityLog        []ActivityResponse     `json:"activity_log"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// ComplaintListResponse is one page of complaints.
type ComplaintListResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Pages      int                 `json:"pages"`
}

// MapMarker is the trimmed projection used by the map view.
type MapMarker struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Department    domain.Department      `json:"department"`
	Status        domain.ComplaintStatus `json:"status"`
	Emergency     bool                   `json:"emergency"`
	PriorityScore int                    `json:"priority_score"`
	Location      LocationPayload        `json:"location"`
}

// VoteResponse is the result of a vote toggle.
type VoteResponse struct {
	Votes         int  `json:"votes"`
	PriorityScore int  `json:"priority_score"`
	Voted         bool `json:"voted"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	images := make([]ImagePayload, 0, len(c.Images))
	for _, img := range c.Images {
		images = append(images, ImagePayload{
			URL:      img.URL,
			PublicID: img.PublicID,
			Width:    img.Width,
			Height:   img.Height,
			Format:   img.Format,
			Bytes:    img.Bytes,
		})
	}
	activity := make([]ActivityResponse, 0, len(c.ActivityLog))
	for _, entry := range c.ActivityLog {
		activity = append(activity, ActivityResponse{Message: entry.Message, Actor: entry.Actor, Time: entry.Time})
	}
	return ComplaintResponse{
		ID:                 c.ID,
		Title:              c.Title,
		Description:        c.Description,
		Department:         c.Department,
		City:               c.City,
		Location:           locationPayload(c.Location),
		Tags:               nonNilStrings(c.Tags),
		Images:             images,
		CitizenID:          c.CitizenID,
		AssignedTo:         c.AssignedTo,
		Status:             c.Status,
		Emergency:          c.Emergency,
		Votes:              c.Votes,
		VotedBy:            nonNilStrings(c.VotedBy),
		PriorityScore:      c.PriorityScore,
		EscalationLevel:    c.EscalationLevel,
		SLADeadline:        c.SLADeadline,
		ResolvedAt:         c.ResolvedAt,
		ResolutionTime:     c.ResolutionTime,
		SatisfactionRating: c.SatisfactionRating,
		ActivityLog:        activity,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// NewMapMarker maps a complaint to its map projection.
func NewMapMarker(c *domain.Complaint) MapMarker {
	return MapMarker{
		ID:            c.ID,
		Title:         c.Title,
		Department:    c.Department,
		Status:        c.Status,
		Emergency:     c.Emergency,
		PriorityScore: c.PriorityScore,
		Location:      locationPayload(c.Location),
	}
}

// ToDomain converts the request location.
func (l LocationPayload) ToDomain() domain.Location {
	return domain.Location{Address: l.Address, Lat: l.Lat, Lng: l.Lng}
}

// ImagesToDomain converts the request images.
func (r CreateComplaintRequest) ImagesToDomain() []domain.Image {
	images := make([]domain.Image, 0, len(r.Images))
	for _, img := range r.Images {
		images = append(images, domain.Image{
			URL:      img.URL,
			PublicID: img.PublicID,
			Width:    img.Width,
			Height:   img.Height,
			Format:   img.Format,
			Bytes:    img.Bytes,
		})
	}
	return images
}

func locationPayload(l domain.Location) LocationPayload {
	return LocationPayload{Address: l.Address, Lat: l.Lat, Lng: l.Lng}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
