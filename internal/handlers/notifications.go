package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/utils"
)

type NotificationsHandler struct {
	Notifications *services.NotificationService
}

func NewNotificationsHandler(notifications *services.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{Notifications: notifications}
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	notifications, err := h.Notifications.List(c.UserContext(), middleware.CurrentUserID(c), services.NotificationListLimit)
	if err != nil {
		return respondError(c, "notification_list_failed", err)
	}

	out := make([]notificationDTO, len(notifications))
	for i := range notifications {
		out[i] = newNotificationDTO(&notifications[i])
	}
	return utils.JSON(c, fiber.StatusOK, notificationsResponse{Notifications: out})
}

func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.Notifications.MarkRead(c.UserContext(), pathID(c, "id"), middleware.CurrentUserID(c)); err != nil {
		return respondError(c, "notification_read_failed", err)
	}
	return utils.Success(c, fiber.StatusOK)
}

func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	if _, err := h.Notifications.MarkAllRead(c.UserContext(), middleware.CurrentUserID(c)); err != nil {
		return respondError(c, "notification_read_all_failed", err)
	}
	return utils.Success(c, fiber.StatusOK)
}

func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.Notifications.UnreadCount(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, "notification_count_failed", err)
	}
	return utils.JSON(c, fiber.StatusOK, countResponse{Count: count})
}
