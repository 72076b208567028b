package handler

import (
	"kala/internal/delivery/http/dto"
	"kala/internal/domain/chat"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type ChatHandler struct {
	uc usecase.ChatUsecase
}

func NewChatHandler(uc usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	g := r.Group("/chat")
	g.Get("/messages", h.History)
	g.Post("/messages", h.Send)
	g.Get("/quick-actions", h.QuickActions)
}

func (h *ChatHandler) History(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	msgs, err := h.uc.History(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, msgs)
}

// Send answers 202 while the reply is pending and 200 once it is attached.
func (h *ChatHandler) Send(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	res, err := h.uc.Send(c.Context(), id, chat.Request{Text: req.Text, QuickAction: req.QuickAction}, req.Wait)
	if err != nil {
		return mapUsecaseError(err)
	}
	if res.Pending {
		return response.Success(c, fiber.StatusAccepted, response.MessageAccepted, res)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *ChatHandler) QuickActions(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.uc.QuickActions())
}
