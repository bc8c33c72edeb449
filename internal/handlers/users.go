package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamy/api/internal/middleware"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

type UsersHandler struct {
	Users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{Users: users}
}

type updateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2"`
	Email           *string `json:"email" validate:"omitempty,email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,min=6"`
}

func (r *updateProfileRequest) normalize() {
	trimInPlace(r.Name)
	if r.Email != nil {
		*r.Email = services.NormalizeEmail(*r.Email)
	}
}

type profileResponse struct {
	User profileDTO `json:"user"`
}

func (h *UsersHandler) Me(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	user, err := h.Users.Get(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "user_load_failed", err)
	}
	stats, err := h.Users.Stats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "user_stats_failed", err)
	}

	return utils.JSON(c, fiber.StatusOK, profileResponse{
		User: profileDTO{
			userDTO: newUserDTO(user),
			Stats: userStatsDTO{
				GroupsCount:       stats.GroupsCount,
				PendingTasksCount: stats.PendingTasksCount,
			},
		},
	})
}

func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	var req updateProfileRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	userID := middleware.CurrentUserID(c)
	err := h.Users.UpdateProfile(c.UserContext(), userID, services.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return respondError(c, "profile_update_failed", err)
	}

	logger.InfoWithUser(userID.String(), "profile_updated", nil)
	return utils.JSON(c, fiber.StatusOK, messageResponse{Message: "profile updated"})
}
