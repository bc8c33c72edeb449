package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/validation"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

const internalErrorMessage = "failed to process request"

func trimInPlace(value *string) {
	if value != nil {
		*value = strings.TrimSpace(*value)
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// pathID parses a path parameter. A malformed id cannot match any row, so it
// becomes uuid.Nil and the lookup that follows reports it like a missing one.
func pathID(c *fiber.Ctx, name string) uuid.UUID {
	id, err := parseUUID(c.Params(name))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// normalizer is implemented by request bodies that trim or fold their fields.
// It runs before validation so length and format rules see the stored value.
type normalizer interface {
	normalize()
}

// bindJSON parses the body into req, normalizes and validates it. It writes
// the 400 response itself and reports false when the handler must stop.
func bindJSON(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	if msg := validation.Struct(req); msg != "" {
		return false, utils.Error(c, fiber.StatusBadRequest, msg)
	}
	return true, nil
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:   fiber.StatusBadRequest,
	apperr.KindUnauthorized: fiber.StatusUnauthorized,
	apperr.KindForbidden:    fiber.StatusForbidden,
	apperr.KindNotFound:     fiber.StatusNotFound,
	apperr.KindConflict:     fiber.StatusConflict,
}

// respondError maps a service error to its status. Anything unclassified is
// logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, action string, err error) error {
	kind := apperr.KindOf(err)
	if status, ok := statusByKind[kind]; ok {
		var appErr *apperr.Error
		message := err.Error()
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		return utils.Error(c, status, message)
	}

	details := map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, action, err, details)
	} else {
		logger.Error(action, err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, internalErrorMessage)
}
