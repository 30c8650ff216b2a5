package handler

import (
	"context"
	"time"

	"hire/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck is one dependency probed by /health. Optional checks only
// downgrade the status; a failing required check turns the probe into 503.
type HealthCheck struct {
	Name     string
	Pinger   Pinger
	Optional bool
}

type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	res := healthResponse{Status: response.MessageOK}
	status := fiber.StatusOK

	for _, chk := range h.checks {
		if chk.Pinger == nil {
			continue
		}
		if res.Components == nil {
			res.Components = make(map[string]string, len(h.checks))
		}
		if err := chk.Pinger.Ping(ctx); err != nil {
			res.Components[chk.Name] = "down"
			if chk.Optional {
				if res.Status == response.MessageOK {
					res.Status = response.MessageDegraded
				}
				continue
			}
			res.Status = response.MessageDown
			status = fiber.StatusServiceUnavailable
			continue
		}
		res.Components[chk.Name] = "up"
	}

	return response.Success(c, status, res.Status, res)
}
