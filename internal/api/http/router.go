package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/dashboard-session/internal/api/http/handlers"
	"github.com/spec-kit/dashboard-session/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Session    *handlers.SessionHandler
	Dashboard  *handlers.DashboardHandler
	RouteGuard *auth.RouteGuard
	Identities auth.IdentityLoader
	Gatherer   prometheus.Gatherer
	// SignOutPath serves the guarded sign-out page when set.
	SignOutPath string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/session")
	api.Get("/state", cfg.Session.State)
	api.Get("/credential", cfg.Session.Credential)
	api.Get("/identity", cfg.Session.Identity)
	api.Get("/language", cfg.Session.Language)
	api.Put("/language", cfg.Session.SetLanguage)
	api.Post("/sign-out", cfg.Session.SignOut)

	if cfg.SignOutPath != "" {
		app.Get(cfg.SignOutPath, cfg.RouteGuard.Handle, cfg.Session.SignOutPage)
	}

	dashboard := app.Group("/dashboard", cfg.RouteGuard.Handle, auth.LoadIdentity(cfg.Identities, nil))
	dashboard.Get("/", cfg.Dashboard.Show)
	dashboard.Get("/billing", auth.RequireOwner(), auth.RequirePremium(), cfg.Dashboard.Show)
	dashboard.Get("/*", cfg.Dashboard.Show)
}
