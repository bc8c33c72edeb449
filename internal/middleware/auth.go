package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/kamy/api/pkg/logger"
	"github.com/kamy/api/pkg/utils"
)

const (
	currentUserKey = "currentUser"
	userIDKey      = "userID"
	// TokenCookie is read when no Authorization header is sent.
	TokenCookie = "token"

	corsHeaders = "Origin, Content-Type, Accept, Authorization"
	corsMethods = "GET,POST,PUT,PATCH,OPTIONS"
)

// AuthMiddleware verifies bearer tokens without touching the store.
type AuthMiddleware struct {
	Tokens *utils.TokenManager
}

func NewAuthMiddleware(tokens *utils.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens}
}

// CORS allows the frontend origin with credentials. An empty or wildcard
// origin is served without credentials, which cors.New requires.
func CORS(frontendURL string) fiber.Handler {
	frontendURL = strings.TrimSpace(frontendURL)
	if frontendURL == "" || frontendURL == "*" {
		return cors.New(cors.Config{
			AllowOrigins: "*",
			AllowHeaders: corsHeaders,
			AllowMethods: corsMethods,
		})
	}

	origins := frontendURL
	if strings.Contains(frontendURL, "localhost") {
		loopback := strings.Replace(frontendURL, "localhost", "127.0.0.1", 1)
		origins = frontendURL + "," + loopback
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     corsHeaders,
		AllowMethods:     corsMethods,
		AllowCredentials: true,
	})
}

// Verify returns the identity carried by the request, or nil when the token
// is absent, malformed or expired.
func (a *AuthMiddleware) Verify(c *fiber.Ctx) *utils.Identity {
	tokenString := extractToken(c)
	if tokenString == "" {
		return nil
	}

	identity, err := a.Tokens.Validate(tokenString)
	if err != nil {
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return nil
	}
	return identity
}

func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	identity := a.Verify(c)
	if identity == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(currentUserKey, identity)
	c.Locals(userIDKey, identity.ID.String())
	return c.Next()
}

// extractToken prefers a Bearer Authorization header and otherwise falls
// back to the token cookie.
func extractToken(c *fiber.Ctx) string {
	if header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(c.Cookies(TokenCookie))
}

func GetCurrentUser(c *fiber.Ctx) *utils.Identity {
	identity, ok := c.Locals(currentUserKey).(*utils.Identity)
	if !ok {
		return nil
	}
	return identity
}

// CurrentUserID returns uuid.Nil outside RequireAuth.
func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	if identity := GetCurrentUser(c); identity != nil {
		return identity.ID
	}
	return uuid.Nil
}
