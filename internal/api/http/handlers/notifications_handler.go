package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicvoice/complaint-service/internal/api/dto"
	"github.com/civicvoice/complaint-service/internal/service"
)

// NotificationsHandler serves the actor's inbox.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 30)
	offset := c.QueryInt("offset", 0)
	inbox, err := h.service.ListMine(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(inbox.Notifications))
	for _, n := range inbox.Notifications {
		items = append(items, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"data": dto.InboxResponse{Notifications: items, Unread: inbox.Unread}})
}

// MarkRead PUT /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// MarkAllRead PUT /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}
