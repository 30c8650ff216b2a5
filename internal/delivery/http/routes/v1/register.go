package v1

import (
	"hire/internal/delivery/http/handler"
	"hire/internal/delivery/http/middleware"
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
	Logger          *zap.Logger
}

// Register mounts the bearer-protected API. Candidate search sits behind the
// same middleware; the recruiter is an authenticated session too.
func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	authMw := middleware.NewAuthMiddleware(d.JWT)
	protected := r.Group("", authMw.Middleware())

	if d.ProfileGraph != nil {
		handler.NewProfileGraphHandler(d.ProfileGraph).RegisterRoutes(protected)
	}
	if d.CandidateSearch != nil {
		handler.NewCandidateSearchHandler(d.CandidateSearch).RegisterRoutes(protected)
	}
	if d.Hub != nil {
		ws.NewHandler(d.Hub, d.Logger).RegisterRoutes(protected)
	}
}
