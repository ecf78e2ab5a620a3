package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/classifier"
	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/events"
	"github.com/civicvoice/complaint-service/internal/priority"
	"github.com/civicvoice/complaint-service/internal/repository"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// ComplaintService owns filing, reads with lazy escalation, status transitions and deletion.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	classifier classifier.Classifier
	dispatcher events.Dispatcher
	cfg        config.LifecycleConfig
	clock      Clock
	logger     *zap.Logger
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	Classifier    classifier.Classifier
	Dispatcher    events.Dispatcher
	Config        config.LifecycleConfig
	Clock         Clock
	Logger        *zap.Logger
}

// ComplaintCreateInput describes the filing payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Department  domain.Department
	Emergency   *bool
	Location    domain.Location
	Tags        []string
	Images      []domain.Image
}

// ComplaintListFilter describes list parameters. Page is 1-based.
type ComplaintListFilter struct {
	Department *domain.Department
	Status     *domain.ComplaintStatus
	City       *string
	Emergency  *bool
	Page       int
	Limit      int
}

// ComplaintPage is one page of the ranked list.
type ComplaintPage struct {
	Items []domain.Complaint
	Total int
	Page  int
	Pages int
}

// StatusUpdateInput is a manual transition request.
type StatusUpdateInput struct {
	Status domain.ComplaintStatus
	Note   string
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		clock:      deps.Clock,
		logger:     logger,
	}
}

// Create files a new complaint on behalf of a citizen or admin.
func (s *ComplaintService) Create(ctx context.Context, actor *domain.Actor, input ComplaintCreateInput) (*domain.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleCitizen && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only citizens and admins may file complaints")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	department, emergency := s.defaults(ctx, input)

	now := s.clock.Now()
	city := actor.City
	if city == "" {
		city = s.cfg.DefaultCity
	}
	complaint := &domain.Complaint{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		Department:    department,
		City:          city,
		Location:      input.Location,
		Tags:          normalizeTags(input.Tags),
		Images:        input.Images,
		CitizenID:     actor.ID,
		Status:        domain.StatusPending,
		Emergency:     emergency,
		PriorityScore: priority.Score(0, emergency),
		SLADeadline:   now.Add(s.cfg.SLA()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	complaint.Log(msgFiled, citizenActor, now)

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:        events.EventComplaintFiled,
		ComplaintID: complaint.ID,
		Actor:       eventActor(actor),
		Timestamp:   now,
		Payload: events.ComplaintFiledPayload{
			CitizenID:  actor.ID,
			Department: complaint.Department,
			Emergency:  complaint.Emergency,
			Title:      complaint.Title,
		},
	})
	return complaint, nil
}

// defaults fills department and emergency from the classifier when the filer left them out.
func (s *ComplaintService) defaults(ctx context.Context, input ComplaintCreateInput) (domain.Department, bool) {
	department := input.Department
	emergency := false
	if input.Emergency != nil {
		emergency = *input.Emergency
	}

	needsSuggestion := department == "" || input.Emergency == nil
	if needsSuggestion && s.cfg.ClassifyOnFile && s.classifier != nil {
		suggestion, err := s.classifier.Classify(ctx, input.Title, input.Description)
		switch {
		case err != nil:
			s.logger.Warn("classifier unavailable, using filer values", zap.Error(err))
		case suggestion != nil:
			if department == "" && suggestion.Department.Valid() {
				department = suggestion.Department
			}
			if input.Emergency == nil {
				emergency = suggestion.Emergency
			}
		}
	}

	if department == "" {
		department = domain.DepartmentGeneral
	}
	return department, emergency
}

// List returns a ranked page. Department actors only ever see their own department.
func (s *ComplaintService) List(ctx context.Context, actor *domain.Actor, filter ComplaintListFilter) (*ComplaintPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageLength
	}

	repoFilter := repository.ComplaintFilter{
		Department: filter.Department,
		Status:     filter.Status,
		City:       filter.City,
		Emergency:  filter.Emergency,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if actor.Role == domain.RoleDepartment {
		dept := actor.Department
		repoFilter.Department = &dept
	}

	items, total, err := s.complaints.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	fresh := items[:0]
	for i := range items {
		refreshed, err := s.refresh(ctx, &items[i])
		if err != nil {
			// Deleted between the page read and the refresh.
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		fresh = append(fresh, *refreshed)
	}
	items = fresh

	return &ComplaintPage{
		Items: items,
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// MapMarkers returns complaints carrying coordinates, ranked like List.
func (s *ComplaintService) MapMarkers(ctx context.Context, limit int) ([]domain.Complaint, error) {
	if limit <= 0 {
		limit = 500
	}
	items, _, err := s.complaints.List(ctx, repository.ComplaintFilter{HasLocation: true, Limit: limit})
	return items, err
}

// Get fetches one complaint with escalation and SLA expiry freshly applied.
func (s *ComplaintService) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, complaintError(err, id)
	}
	return s.refresh(ctx, complaint)
}

// refresh evaluates the time rules on a projection and persists them through the atomic update
// only when something changed. The locked record is re-evaluated, so concurrent readers apply
// each escalation once.
func (s *ComplaintService) refresh(ctx context.Context, complaint *domain.Complaint) (*domain.Complaint, error) {
	now := s.clock.Now()
	projection := complaint.Clone()
	if !applyTimeRules(projection, now).changed {
		return complaint, nil
	}

	var outcome timeOutcome
	updated, err := s.complaints.Update(ctx, complaint.ID, func(locked *domain.Complaint) error {
		outcome = applyTimeRules(locked, now)
		if !outcome.changed {
			return repository.ErrNoChange
		}
		locked.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, complaintError(err, complaint.ID)
		}
		s.logger.Warn("persisting time-driven transition failed",
			zap.String("complaint_id", complaint.ID), zap.Error(err))
		return projection, nil
	}

	s.publishTimeOutcome(ctx, updated, outcome, true)
	return updated, nil
}

// publishTimeOutcome emits events for what the time rules changed. withStatus is false when a
// manual transition in the same update supersedes the time-driven status.
func (s *ComplaintService) publishTimeOutcome(ctx context.Context, complaint *domain.Complaint, outcome timeOutcome, withStatus bool) {
	if !outcome.changed {
		return
	}
	if outcome.escalated() {
		s.logger.Info("complaint escalated",
			zap.String("complaint_id", complaint.ID),
			zap.Int("level", outcome.newLevel))
		publishEvent(ctx, s.dispatcher, s.clock, events.Event{
			Type:        events.EventComplaintEscalated,
			ComplaintID: complaint.ID,
			Actor:       eventActor(nil),
			Payload: events.EscalatedPayload{
				OldLevel:   outcome.oldLevel,
				NewLevel:   outcome.newLevel,
				Department: complaint.Department,
				CitizenID:  complaint.CitizenID,
				Title:      complaint.Title,
			},
		})
	}
	if withStatus && outcome.statusChanged() {
		publishEvent(ctx, s.dispatcher, s.clock, events.Event{
			Type:        events.EventComplaintStatusChange,
			ComplaintID: complaint.ID,
			Actor:       eventActor(nil),
			Payload: events.StatusChangedPayload{
				OldStatus: outcome.oldStatus,
				NewStatus: outcome.newStatus,
				Automatic: true,
				Complaint: complaint.Clone(),
			},
		})
	}
}

// UpdateStatus applies a manual transition by a department or admin actor.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.Actor, id string, input StatusUpdateInput) (*domain.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleDepartment && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only department staff and admins may change status")
	}
	if !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.Status})
	}
	if !isManualTarget(input.Status) {
		return nil, apperrors.NewValidationError("status cannot be set manually", map[string]any{"status": input.Status})
	}
	note := strings.TrimSpace(input.Note)
	if len([]rune(note)) > maxNoteLength {
		return nil, apperrors.NewValidationError("note too long", map[string]any{"note": "max 500 characters"})
	}

	now := s.clock.Now()
	var (
		outcome timeOutcome
		from    domain.ComplaintStatus
	)
	updated, err := s.complaints.Update(ctx, id, func(locked *domain.Complaint) error {
		if !canTransition(actor, locked.Department) {
			return apperrors.NewForbidden("not authorized for this department")
		}
		outcome = applyTimeRules(locked, now)
		if !isValidTransition(locked.Status, input.Status) {
			return apperrors.NewInvalidState("invalid status transition", map[string]any{
				"from": locked.Status,
				"to":   input.Status,
			})
		}
		from = locked.Status
		applyTransition(locked, actor, input.Status, note, now)
		return nil
	})
	if err != nil {
		return nil, complaintError(err, id)
	}

	s.logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_id", actor.ID))

	s.publishTimeOutcome(ctx, updated, outcome, false)
	publishEvent(ctx, s.dispatcher, s.clock, events.Event{
		Type:        events.EventComplaintStatusChange,
		ComplaintID: updated.ID,
		Actor:       eventActor(actor),
		Payload: events.StatusChangedPayload{
			OldStatus: from,
			NewStatus: updated.Status,
			Note:      note,
			Complaint: updated.Clone(),
		},
	})
	return updated, nil
}

// Delete removes a complaint. Admin only.
func (s *ComplaintService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("only admins may delete complaints")
	}
	if err := s.complaints.Delete(ctx, id); err != nil {
		return complaintError(err, id)
	}
	s.logger.Info("complaint deleted", zap.String("complaint_id", id), zap.String("actor_id", actor.ID))
	return nil
}

func validateCreateInput(input ComplaintCreateInput) error {
	details := map[string]any{}
	if n := len([]rune(input.Title)); n < minTitleLength || n > maxTitleLength {
		details["title"] = "must be 5-150 characters"
	}
	if n := len([]rune(input.Description)); n < minDescLength || n > maxDescLength {
		details["description"] = "must be 10-2000 characters"
	}
	if input.Department != "" && !input.Department.Valid() {
		details["department"] = "unknown department"
	}
	if lat := input.Location.Lat; lat != nil && (*lat < -90 || *lat > 90) {
		details["lat"] = "must be between -90 and 90"
	}
	if lng := input.Location.Lng; lng != nil && (*lng < -180 || *lng > 180) {
		details["lng"] = "must be between -180 and 180"
	}
	for i, img := range input.Images {
		if strings.TrimSpace(img.URL) == "" {
			details["images"] = map[string]any{"index": i, "url": "required"}
			break
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid complaint", details)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
