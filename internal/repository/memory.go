package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// MemoryComplaintRepository keeps complaints in process. Used by tests and when no DSN is configured.
type MemoryComplaintRepository struct {
	mu         sync.Mutex
	complaints map[string]*domain.Complaint
}

// NewMemoryComplaintRepository constructs an empty store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{complaints: make(map[string]*domain.Complaint)}
}

func (r *MemoryComplaintRepository) Create(_ context.Context, c *domain.Complaint) error {
	if err := ValidateComplaint(c); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.complaints[c.ID]; exists {
		return errors.New("duplicate complaint id")
	}
	r.complaints[c.ID] = c.Clone()
	return nil
}

func (r *MemoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (r *MemoryComplaintRepository) List(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error) {
	r.mu.Lock()
	matched := make([]domain.Complaint, 0, len(r.complaints))
	for _, c := range r.complaints {
		if filter.Department != nil && c.Department != *filter.Department {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.City != nil && c.City != *filter.City {
			continue
		}
		if filter.Emergency != nil && c.Emergency != *filter.Emergency {
			continue
		}
		if filter.HasLocation && (c.Location.Lat == nil || c.Location.Lng == nil) {
			continue
		}
		matched = append(matched, *c.Clone())
	}
	r.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	total := len(matched)
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if offset >= total {
		return []domain.Complaint{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *MemoryComplaintRepository) Update(_ context.Context, id string, mutate MutateFunc) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := stored.Clone()
	if err := mutate(working); err != nil {
		if errors.Is(err, ErrNoChange) {
			return stored.Clone(), nil
		}
		return nil, err
	}
	if err := ValidateComplaint(working); err != nil {
		return nil, err
	}
	r.complaints[id] = working
	return working.Clone(), nil
}

func (r *MemoryComplaintRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.complaints[id]; !ok {
		return ErrNotFound
	}
	delete(r.complaints, id)
	return nil
}

func (r *MemoryComplaintRepository) Stats(_ context.Context, filter StatsFilter) (*ComplaintStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		stats                    ComplaintStats
		resolutionSum, ratingSum float64
		resolutionN, ratingN     int
		byDept                   = map[domain.Department]*DepartmentBreakdown{}
		prioritySum              = map[domain.Department]int{}
	)
	for _, c := range r.complaints {
		if filter.Department != nil && c.Department != *filter.Department {
			continue
		}
		if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.ResolvedFrom != nil && (c.ResolvedAt == nil || c.ResolvedAt.Before(*filter.ResolvedFrom)) {
			continue
		}
		stats.Total++
		switch c.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			stats.Resolved++
		case domain.StatusOverdue:
			stats.Overdue++
		case domain.StatusEscalated:
			stats.Escalated++
		}
		if c.ResolutionTime != nil {
			resolutionSum += *c.ResolutionTime
			resolutionN++
		}
		if c.SatisfactionRating != nil {
			ratingSum += float64(*c.SatisfactionRating)
			ratingN++
		}

		d, ok := byDept[c.Department]
		if !ok {
			d = &DepartmentBreakdown{Department: c.Department}
			byDept[c.Department] = d
		}
		d.Total++
		prioritySum[c.Department] += c.PriorityScore
		switch c.Status {
		case domain.StatusResolved:
			d.Resolved++
		case domain.StatusPending:
			d.Pending++
		case domain.StatusOverdue:
			d.Overdue++
		}
	}

	if resolutionN > 0 {
		avg := resolutionSum / float64(resolutionN)
		stats.AvgResolutionHours = &avg
	}
	if ratingN > 0 {
		avg := ratingSum / float64(ratingN)
		stats.AvgRating = &avg
	}

	if filter.Department == nil {
		for dept, d := range byDept {
			d.AvgPriority = float64(prioritySum[dept]) / float64(d.Total)
			stats.ByDepartment = append(stats.ByDepartment, *d)
		}
		sort.Slice(stats.ByDepartment, func(i, j int) bool {
			a, b := stats.ByDepartment[i], stats.ByDepartment[j]
			if a.Total != b.Total {
				return a.Total > b.Total
			}
			return a.Department < b.Department
		})
	}
	return &stats, nil
}

// MemoryUserRepository keeps actors in process.
type MemoryUserRepository struct {
	mu     sync.Mutex
	actors map[string]*domain.Actor
}

// NewMemoryUserRepository constructs an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{actors: make(map[string]*domain.Actor)}
}

func (r *MemoryUserRepository) Create(_ context.Context, actor *domain.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if actor.ID == "" {
		actor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = now
	}
	actor.UpdatedAt = now
	copied := *actor
	r.actors[actor.ID] = &copied
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, ok := r.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *actor
	return &copied, nil
}

func (r *MemoryUserRepository) AddPoints(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, ok := r.actors[id]
	if !ok {
		return ErrNotFound
	}
	actor.CivicPoints += delta
	return nil
}

func (r *MemoryUserRepository) RecordRating(_ context.Context, id string, rating int) (*domain.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, ok := r.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	actor.AverageRating = (actor.AverageRating*float64(actor.TotalRatings) + float64(rating)) / float64(actor.TotalRatings+1)
	actor.TotalRatings++
	copied := *actor
	return &copied, nil
}

func (r *MemoryUserRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.Actor, error) {
	r.mu.Lock()
	result := make([]domain.Actor, 0)
	for _, actor := range r.actors {
		if actor.Role == role && actor.Active {
			result = append(result, *actor)
		}
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return result, nil
}

// MemoryNotificationRepository keeps notifications in process.
type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

// NewMemoryNotificationRepository constructs an empty store.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *MemoryNotificationRepository) ListByRecipient(_ context.Context, recipientID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit, offset = normalizePage(limit, offset)

	var mine []domain.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].RecipientID == recipientID {
			mine = append(mine, r.notifications[i])
		}
	}
	if offset >= len(mine) {
		return []domain.Notification{}, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], nil
}

func (r *MemoryNotificationRepository) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *MemoryNotificationRepository) MarkRead(_ context.Context, id, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].RecipientID == recipientID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryNotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID && !r.notifications[i].Read {
			r.notifications[i].Read = true
			updated++
		}
	}
	return updated, nil
}
