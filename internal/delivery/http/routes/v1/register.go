package v1

import (
	"kala/internal/delivery/http/handler"
	"kala/internal/delivery/http/middleware"
	"kala/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Catalog    *handler.CatalogHandler
	Wizard     *handler.WizardHandler
	Onboarding *handler.OnboardingHandler
	Chat       *handler.ChatHandler
	Product    *handler.ProductHandler
	WS         *ws.Handler
	AuthMw     *middleware.AuthMiddleware
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	h.Catalog.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)

	if h.AuthMw == nil {
		return
	}
	if h.WS != nil {
		r.Get("/chat/ws", h.AuthMw.QueryMiddleware(), h.WS.HandleChatWS)
	}

	protected := r.Group("", h.AuthMw.Middleware())
	h.Auth.RegisterSessionRoutes(protected)
	h.Wizard.RegisterRoutes(protected)
	h.Onboarding.RegisterRoutes(protected)
	h.Chat.RegisterRoutes(protected)
	h.Product.RegisterRoutes(protected)
}
