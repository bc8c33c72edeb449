package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kamy/api/internal/services"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

const forgotPasswordMessage = "If the email is registered, you will receive instructions to reset your password."

type AuthHandler struct {
	Users  *services.UserService
	Tokens *utils.TokenManager
}

func NewAuthHandler(users *services.UserService, tokens *utils.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name" validate:"min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = services.NormalizeEmail(r.Email)
}

func (r *loginRequest) normalize() {
	r.Email = services.NormalizeEmail(r.Email)
}

func (r *forgotPasswordRequest) normalize() {
	r.Email = services.NormalizeEmail(r.Email)
}

type authResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.Users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, "user_register_failed", err)
	}

	token, err := h.Tokens.Generate(utils.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return respondError(c, "token_generation_failed", err)
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email": user.Email,
	})

	return utils.JSON(c, fiber.StatusCreated, authResponse{User: newUserDTO(user), Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.Users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"email": req.Email,
			"ip":    c.IP(),
		})
		return respondError(c, "user_login_failed", err)
	}

	token, err := h.Tokens.Generate(utils.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return respondError(c, "token_generation_failed", err)
	}

	logger.InfoWithUser(user.ID.String(), "user_logged_in", nil)

	return utils.JSON(c, fiber.StatusOK, authResponse{User: newUserDTO(user), Token: token})
}

// ForgotPassword answers the same way whether or not the email exists. No
// mail is sent.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.Users.FindByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondError(c, "forgot_password_failed", err)
	}
	if user != nil {
		logger.InfoWithUser(user.ID.String(), "password_reset_requested", nil)
	}

	return utils.JSON(c, fiber.StatusOK, messageResponse{Message: forgotPasswordMessage})
}
