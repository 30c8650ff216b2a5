package app

import (
	"context"
	"fmt"
	"strings"

	"hire/internal/config"
	"hire/internal/delivery/http/middleware"
	"hire/internal/delivery/http/routes"
	"hire/internal/delivery/http/validation"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the fiber app around an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:         c.Config.App.AppName,
		StructValidator: validation.New(),
	})

	registerGlobalMiddleware(f, c.Logger)
	routes.NewRegistry(routes.Deps{
		JWT:             c.JWT,
		ProfileGraph:    c.ProfileGraph,
		CandidateSearch: c.CandidateSearch,
		Hub:             c.Hub,
		DB:              c.DB,
		Cache:           c.Cache,
		Logger:          c.Logger,
	}).Register(f)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(logger.Named("http"))
	errMw := middleware.NewErrorMiddleware(logger.Named("http"))
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
