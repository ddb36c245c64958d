package app

import (
	"context"
	"fmt"
	"strings"

	"devhub/internal/config"
	"devhub/internal/delivery/http/handler"
	"devhub/internal/delivery/http/middleware"
	"devhub/internal/delivery/http/routes"
	"devhub/internal/infrastructure/storage/local"
	"devhub/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/static"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP application on top of an already wired container.
func New(c *Container) *App {
	cfg := c.Config

	f := fiber.New(fiber.Config{
		AppName:   cfg.App.AppName,
		BodyLimit: cfg.App.BodyLimit,
	})

	registerGlobalMiddleware(f, c.Logger, cfg.App.CORSOrigins)
	if c.LocalUploadDir != "" {
		f.Use(local.PublicPath, static.New(c.LocalUploadDir))
	}

	registry := &routes.Registry{
		Health:      handler.NewHealthHandler(c.DB, c.Cache),
		Auth:        handler.NewAuthHandler(c.Auth),
		Profile:     handler.NewProfileHandler(c.Profiles),
		Project:     handler.NewProjectHandler(c.Projects),
		Picture:     handler.NewPictureHandler(c.Profiles),
		Events:      ws.NewHandler(c.Hub, c.Logger),
		RequireAuth: middleware.NewAuthMiddleware(c.Tokens).Middleware(),
		AuthLimit:   middleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst).Middleware(),
	}
	registry.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires every dependency, starts the background workers and
// returns the app with its cleanup function.
func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	c.Start(ctx)

	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger, origins []string) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	if len(origins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowHeaders:  []string{fiber.HeaderAuthorization, fiber.HeaderContentType, middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
		}))
	}
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
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
