package handler

import (
	"kala/internal/delivery/http/dto"
	"kala/internal/delivery/http/middleware"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// AuthHandler issues session tokens. Sign in and sign up are wizard
// actions; there are no credentials.
type AuthHandler struct {
	uc usecase.SessionUsecase
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewAuthHandler(uc usecase.SessionUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// RegisterRoutes mounts the public routes.
func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/sessions", h.Start)
	r.Post("/auth/refresh", h.Refresh)
}

// RegisterSessionRoutes mounts the routes that need an access token.
func (h *AuthHandler) RegisterSessionRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/session", h.Get)
	r.Delete("/session", h.End)
}

func (h *AuthHandler) Start(c fiber.Ctx) error {
	view, tokens, err := h.uc.Start(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.SessionResponse{Session: view, Tokens: tokens})
}

// Refresh reads the refresh token from the Authorization header, falling
// back to the JSON body.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	tok, ok := middleware.BearerToken(c.Get("Authorization"))
	if !ok {
		var req refreshRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&req); err != nil {
				return badRequest(err)
			}
		}
		tok = req.RefreshToken
	}

	tokens, err := h.uc.Refresh(c.Context(), tok)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, tokens)
}

func (h *AuthHandler) Get(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	view, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, view)
}

func (h *AuthHandler) End(c fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.uc.End(c.Context(), id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
