package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicvoice/complaint-service/internal/api/dto"
	"github.com/civicvoice/complaint-service/internal/service"
)

// UsersHandler serves actor profile and directory endpoints.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// Me GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewActorResponse(actor)})
}

// Departments GET /api/departments.
func (h *UsersHandler) Departments(c *fiber.Ctx) error {
	officers, err := h.directory.Departments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOfficerResponses(officers)})
}
