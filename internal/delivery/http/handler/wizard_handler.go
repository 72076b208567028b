package handler

import (
	"errors"

	"kala/internal/delivery/http/dto"
	"kala/internal/delivery/http/middleware"
	"kala/internal/domain/onboarding"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type WizardHandler struct {
	uc usecase.WizardUsecase
}

func NewWizardHandler(uc usecase.WizardUsecase) *WizardHandler {
	return &WizardHandler{uc: uc}
}

func (h *WizardHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/wizard/:action", h.Apply)
}

// Apply runs one navigator action. A step that fails validation answers
// 422 with the validation result, including the notice to show.
func (h *WizardHandler) Apply(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	action, err := onboarding.ParseAction(c.Params("action"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Unknown action", nil, err)
	}

	var req dto.WizardActionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return badRequest(err)
		}
	}

	t, err := h.uc.Apply(c.Context(), id, onboarding.Event{
		Action: action,
		Code:   req.Code,
		Offset: req.Offset,
		Width:  req.Width,
	})
	if err != nil {
		if errors.Is(err, onboarding.ErrInvalidTransition) {
			return middleware.NewAppError(fiber.StatusConflict, err.Error(), t, err)
		}
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, t)
}
