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

type ProfileGraphHandler struct {
	uc usecase.ProfileGraphUsecase
}

func NewProfileGraphHandler(uc usecase.ProfileGraphUsecase) *ProfileGraphHandler {
	return &ProfileGraphHandler{uc: uc}
}

func (h *ProfileGraphHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	me := r.Group("/me")
	me.Get("/graph", h.GetGraph)
	me.Post("/graph/actions", h.ApplyActions)
	me.Get("/graph/text", h.GetText)
	me.Put("/profile/searchable", h.SetSearchable)
}

func (h *ProfileGraphHandler) GetGraph(c fiber.Ctx) error {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	p, err := h.uc.GetGraph(c.Context(), profileID)
	if err != nil {
		return mapProfileGraphUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ProfileGraphResponse{
		ID:             p.ID,
		Name:           p.Name,
		ProfessionName: p.ProfessionName,
		Grade:          p.Grade,
		IsSearchable:   p.IsSearchable,
		TraitCount:     p.Graph.Len(),
		Graph:          p.Graph,
		UpdatedAt:      p.UpdatedAt,
	})
}

func (h *ProfileGraphHandler) ApplyActions(c fiber.Ctx) error {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.ApplyActionsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", validation.Details(err), err)
	}

	res, err := h.uc.ApplyActions(c.Context(), profileID, usecase.ApplyActionsInput{
		Actions: req.Actions,
		Raw:     req.Raw,
	})
	if err != nil {
		return mapProfileGraphUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ApplyActionsResponse{
		BatchID:          res.BatchID,
		Results:          res.Results,
		Applied:          res.Applied,
		Skipped:          res.Skipped,
		DroppedRelations: res.DroppedRelations,
		TraitCount:       res.TraitCount,
	})
}

func (h *ProfileGraphHandler) GetText(c fiber.Ctx) error {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	text, err := h.uc.GetText(c.Context(), profileID)
	if err != nil {
		return mapProfileGraphUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ProfileTextResponse{Text: text})
}

func (h *ProfileGraphHandler) SetSearchable(c fiber.Ctx) error {
	profileID, ok := middleware.ProfileID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.SetSearchableRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", validation.Details(err), err)
	}
	if req.Searchable == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", map[string]string{"searchable": "required"}, nil)
	}

	if err := h.uc.SetSearchable(c.Context(), profileID, *req.Searchable); err != nil {
		return mapProfileGraphUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.SetSearchableResponse{Searchable: *req.Searchable})
}

func mapProfileGraphUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, usecase.ErrProfileBusy):
		return middleware.NewAppError(fiber.StatusConflict, "Profile graph is being updated, retry shortly", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
