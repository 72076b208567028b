package app

import (
	"context"
	"fmt"
	"strings"

	"kala/internal/config"
	"kala/internal/delivery/http/handler"
	"kala/internal/delivery/http/middleware"
	"kala/internal/delivery/http/routes"
	v1 "kala/internal/delivery/http/routes/v1"
	"kala/internal/domain/onboarding"
	"kala/internal/pkg/jwt"
	"kala/internal/usecase"
	"kala/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New wires usecases and handlers over an existing container.
func New(cfg config.Config, c *Container) *App {
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, cfg, c)

	return &App{Fiber: f, Container: c}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(cfg, c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.Metrics())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, cfg config.Config, c *Container) {
	if app == nil || c == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	nav := onboarding.NewNavigator(c.Catalog)
	locks := usecase.NewSessionLocks()

	sessionUC := usecase.NewSessionUsecase(c.Sessions, nav, jwtSvc, c.Replies, locks)
	wizardUC := usecase.NewWizardUsecase(c.Sessions, c.Profiles, nav, locks, c.Logger)
	onboardingUC := usecase.NewOnboardingUsecase(c.Sessions, c.Profiles, c.Catalog, locks)
	chatUC := usecase.NewChatUsecase(c.Sessions, c.Replies, locks, c.Hub, usecase.ChatOptions{
		Delay:  cfg.Chat.ReplyDelay,
		Logger: c.Logger,
	})
	productUC := usecase.NewProductUsecase(c.Products, c.Catalog)

	checks := map[string]handler.Pinger{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}

	routes.NewRegistry(handler.NewHealthHandler(checks), v1.Handlers{
		Auth:       handler.NewAuthHandler(sessionUC),
		Catalog:    handler.NewCatalogHandler(c.Catalog),
		Wizard:     handler.NewWizardHandler(wizardUC),
		Onboarding: handler.NewOnboardingHandler(onboardingUC),
		Chat:       handler.NewChatHandler(chatUC),
		Product:    handler.NewProductHandler(productUC),
		WS:         ws.NewHandler(c.Hub, c.Logger),
		AuthMw:     middleware.NewAuthMiddleware(jwtSvc),
	}).Register(app)
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
