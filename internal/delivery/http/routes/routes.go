package routes

import (
	"hire/internal/delivery/http/handler"
	v1 "hire/internal/delivery/http/routes/v1"
	"hire/internal/pkg/jwt"
	"hire/internal/usecase"
	"hire/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Deps struct {
	JWT             jwt.Service
	ProfileGraph    usecase.ProfileGraphUsecase
	CandidateSearch usecase.CandidateSearchUsecase
	Hub             *ws.Hub
	DB              handler.Pinger
	Cache           handler.Pinger
	Logger          *zap.Logger
}

type Registry struct {
	deps   Deps
	health *handler.HealthHandler
}

func NewRegistry(d Deps) *Registry {
	checks := []handler.HealthCheck{}
	if d.DB != nil {
		checks = append(checks, handler.HealthCheck{Name: "postgres", Pinger: d.DB})
	}
	if d.Cache != nil {
		checks = append(checks, handler.HealthCheck{Name: "redis", Pinger: d.Cache, Optional: true})
	}
	return &Registry{deps: d, health: handler.NewHealthHandler(checks...)}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), v1.Deps{
		JWT:             r.deps.JWT,
		ProfileGraph:    r.deps.ProfileGraph,
		CandidateSearch: r.deps.CandidateSearch,
		Hub:             r.deps.Hub,
		Logger:          r.deps.Logger,
	})
}
