package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionChecker reports whether the gateway session is up.
type ConnectionChecker interface {
	Connected() bool
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	gateway     ConnectionChecker
	deps        map[string]Pinger
}

// NewHealthHandler returns a new handler instance. deps may be empty when the counter
// is stored on local disk.
func NewHealthHandler(serviceName, version string, gateway ConnectionChecker, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, gateway: gateway, deps: deps}
}

// Root is the keepalive banner.
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.SendString("Ticket bot is running!")
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the gateway and storage dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.gateway != nil && h.gateway.Connected() {
		depStatus["gateway"] = "ok"
	} else {
		depStatus["gateway"] = "disconnected"
		ready = false
	}

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
			continue
		}
		depStatus[name] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
