package handler

import (
	"kala/internal/delivery/http/dto"
	"kala/internal/domain/onboarding"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type OnboardingHandler struct {
	uc usecase.OnboardingUsecase
}

func NewOnboardingHandler(uc usecase.OnboardingUsecase) *OnboardingHandler {
	return &OnboardingHandler{uc: uc}
}

func (h *OnboardingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	g := r.Group("/onboarding")
	g.Get("/draft", h.GetDraft)
	g.Patch("/draft", h.PatchDraft)
	g.Post("/draft/toggle", h.Toggle)
	g.Post("/platforms/:id/connect", h.Connect)
	g.Get("/progress", h.Progress)
	g.Get("/steps/:step/validation", h.ValidateStep)

	r.Get("/profile", h.Profile)
}

func (h *OnboardingHandler) GetDraft(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	v, err := h.uc.Draft(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) PatchDraft(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var patch onboarding.DraftPatch
	if err := c.Bind().Body(&patch); err != nil {
		return badRequest(err)
	}
	v, err := h.uc.Patch(c.Context(), id, patch)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) Toggle(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var req dto.ToggleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}
	field, err := onboarding.ParseSetField(req.Field)
	if err != nil {
		return mapUsecaseError(err)
	}
	v, err := h.uc.Toggle(c.Context(), id, field, req.ID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}

func (h *OnboardingHandler) Connect(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	v, notice, err := h.uc.Connect(c.Context(), id, c.Params("id"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, notice.Message, fiber.Map{
		"draft":    v.Draft,
		"progress": v.Progress,
		"notice":   notice,
	})
}

func (h *OnboardingHandler) Progress(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	p, err := h.uc.Progress(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

// ValidateStep reports the result without blocking, so clients can show
// the notice before the artisan presses continue.
func (h *OnboardingHandler) ValidateStep(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	step, err := onboarding.ParseStep(c.Params("step"))
	if err != nil {
		return mapUsecaseError(err)
	}
	res, err := h.uc.ValidateStep(c.Context(), id, step)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *OnboardingHandler) Profile(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	p, err := h.uc.Profile(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}
