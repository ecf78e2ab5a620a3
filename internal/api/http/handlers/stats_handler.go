package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/civicvoice/complaint-service/internal/api/dto"
	"github.com/civicvoice/complaint-service/internal/domain"
	"github.com/civicvoice/complaint-service/internal/service"
	apperrors "github.com/civicvoice/complaint-service/pkg/util/errorutil"
)

// StatsHandler serves the aggregate projections.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// City GET /api/stats/city.
func (h *StatsHandler) City(c *fiber.Ctx) error {
	stats, err := h.service.City(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCityStatsResponse(stats)})
}

// Department GET /api/stats/department/:dept.
func (h *StatsHandler) Department(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	raw, err := url.PathUnescape(c.Params("dept"))
	if err != nil {
		return apperrors.NewValidationError("invalid department", nil)
	}
	stats, err := h.service.Department(c.UserContext(), actor, domain.Department(raw))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentStatsResponse(stats)})
}
