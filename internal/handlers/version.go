package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamy/api/pkg/utils"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/kamy/api/internal/handlers.Version=1.2.3"
var Version = "dev"

const (
	apiVersion = "v1"
	appName    = "kamy"
)

type versionResponse struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	APIVersion string `json:"apiVersion"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func GetVersion(c *fiber.Ctx) error {
	return utils.JSON(c, fiber.StatusOK, versionResponse{
		Name:       appName,
		Version:    Version,
		APIVersion: apiVersion,
	})
}

func Health(c *fiber.Ctx) error {
	return utils.JSON(c, fiber.StatusOK, healthResponse{Status: "ok"})
}
