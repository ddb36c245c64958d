package routes

import (
	"devhub/internal/delivery/http/handler"
	"devhub/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry owns the HTTP handlers and mounts them on an app.
type Registry struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Project *handler.ProjectHandler
	Picture *handler.PictureHandler
	Events  *ws.Handler

	RequireAuth fiber.Handler
	AuthLimit   fiber.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r)
}

func RegisterV1(v1 fiber.Router, r *Registry) {
	if v1 == nil || r == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(v1)
	}

	if r.Auth != nil {
		r.Auth.RegisterRoutes(v1.Group("/auth"), r.AuthLimit)
		// root-level aliases kept for older clients
		r.Auth.RegisterRoutes(v1, r.AuthLimit)
	}

	if r.Profile != nil {
		r.Profile.RegisterRoutes(v1, r.RequireAuth)
	}
	if r.Picture != nil {
		r.Picture.RegisterRoutes(v1, r.RequireAuth)
	}
	if r.Project != nil {
		r.Project.RegisterRoutes(v1.Group("/projects", r.RequireAuth))
	}

	if r.Events != nil {
		r.Events.RegisterRoutes(v1)
	}
}
