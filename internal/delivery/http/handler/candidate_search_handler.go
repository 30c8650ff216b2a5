package handler

import (
	"errors"

	"hire/internal/delivery/http/dto"
	"hire/internal/delivery/http/middleware"
	"hire/internal/delivery/http/validation"
	"hire/internal/pkg/response"
	"hire/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CandidateSearchHandler struct {
	uc usecase.CandidateSearchUsecase
}

func NewCandidateSearchHandler(uc usecase.CandidateSearchUsecase) *CandidateSearchHandler {
	return &CandidateSearchHandler{uc: uc}
}

func (h *CandidateSearchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/candidates/search", h.Search)
}

func (h *CandidateSearchHandler) Search(c fiber.Ctx) error {
	var req dto.CandidateSearchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", validation.Details(err), err)
	}

	res, err := h.uc.Search(c.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyQuery):
			return middleware.NewAppError(fiber.StatusBadRequest, "Search query is empty", nil, err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
	}

	msg := response.MessageOK
	if res.Message != "" {
		msg = res.Message
	}
	return response.Success(c, fiber.StatusOK, msg, res)
}
