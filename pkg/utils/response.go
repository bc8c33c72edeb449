package utils

import "github.com/gofiber/fiber/v2"

// JSON writes an explicit response DTO with the given status.
func JSON(c *fiber.Ctx, status int, body interface{}) error {
	return c.Status(status).JSON(body)
}

// OK is the body of endpoints that only acknowledge a mutation.
type OK struct {
	Success bool `json:"success"`
}

func Success(c *fiber.Ctx, status int) error {
	return c.Status(status).JSON(OK{Success: true})
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorBody{
		Success: false,
		Error:   message,
	})
}
