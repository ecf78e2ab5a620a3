package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicvoice/complaint-service/internal/api/dto"
	"github.com/civicvoice/complaint-service/internal/auth"
	"github.com/civicvoice/complaint-service/internal/classifier"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/service"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

const mapMarkerLimit = 500

// ComplaintsHandler serves the complaint lifecycle endpoints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
	engagement *service.EngagementService
	classifier classifier.Classifier
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, engagement *service.EngagementService, cls classifier.Classifier) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, engagement: engagement, classifier: cls}
}

// List GET /api/complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter, err := parseComplaintQuery(c)
	if err != nil {
		return err
	}
	page, err := h.complaints.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewComplaintResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{"data": dto.ComplaintListResponse{
		Complaints: items,
		Total:      page.Total,
		Page:       page.Page,
		Pages:      page.Pages,
	}})
}

// Create POST /api/complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.complaints.Create(c.UserContext(), actor, service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Emergency:   req.Emergency,
		Location:    req.Location.ToDomain(),
		Tags:        req.Tags,
		Images:      req.ImagesToDomain(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Get GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Map GET /api/complaints/map.
func (h *ComplaintsHandler) Map(c *fiber.Ctx) error {
	complaints, err := h.complaints.MapMarkers(c.UserContext(), mapMarkerLimit)
	if err != nil {
		return err
	}
	markers := make([]dto.MapMarker, 0, len(complaints))
	for i := range complaints {
		markers = append(markers, dto.NewMapMarker(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": markers})
}

// Classify POST /api/complaints/classify.
func (h *ComplaintsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("title or description required", nil)
	}
	result, err := h.classifier.Classify(c.UserContext(), req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// UpdateStatus PUT /api/complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.UpdateStatus(c.UserContext(), actor, c.Params("id"), service.StatusUpdateInput{
		Status: req.Status,
		Note:   req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Vote POST /api/complaints/:id/vote.
func (h *ComplaintsHandler) Vote(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	result, err := h.engagement.ToggleVote(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VoteResponse{
		Votes:         result.Votes,
		PriorityScore: result.PriorityScore,
		Voted:         result.Voted,
	}})
}

// Rate POST /api/complaints/:id/rate.
func (h *ComplaintsHandler) Rate(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.RateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.engagement.Rate(c.UserContext(), actor, c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Delete DELETE /api/complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.complaints.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func parseComplaintQuery(c *fiber.Ctx) (service.ComplaintListFilter, error) {
	filter := service.ComplaintListFilter{}
	if v := c.Query("department"); v != "" {
		dept := domain.Department(v)
		if !dept.Valid() {
			return filter, apperrors.NewValidationError("invalid department", map[string]any{"department": v})
		}
		filter.Department = &dept
	}
	if v := c.Query("status"); v != "" {
		status := domain.ComplaintStatus(v)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": v})
		}
		filter.Status = &status
	}
	if v := c.Query("city"); v != "" {
		filter.City = &v
	}
	if v := c.Query("emergency"); v != "" {
		emergency, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid emergency flag", map[string]any{"emergency": v})
		}
		filter.Emergency = &emergency
	}
	filter.Page = c.QueryInt("page", 1)
	filter.Limit = c.QueryInt("limit", 20)
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return filter, nil
}

func currentActor(c *fiber.Ctx) (*domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}
