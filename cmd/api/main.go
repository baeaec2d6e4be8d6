package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/dashboard-session/internal/api/http"
	"github.com/spec-kit/dashboard-session/internal/api/http/handlers"
	"github.com/spec-kit/dashboard-session/internal/auth"
	"github.com/spec-kit/dashboard-session/internal/authority"
	"github.com/spec-kit/dashboard-session/internal/config"
	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/events"
	"github.com/spec-kit/dashboard-session/internal/guard"
	"github.com/spec-kit/dashboard-session/internal/identity"
	"github.com/spec-kit/dashboard-session/internal/observability"
	"github.com/spec-kit/dashboard-session/internal/persistence"
	"github.com/spec-kit/dashboard-session/internal/service"
	"github.com/spec-kit/dashboard-session/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	kv, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	dispatcher := events.NewInMemoryDispatcher(logger)

	var decoderOpts []auth.DecoderOption
	if cfg.Auth.JWKSURL != "" {
		jwks, err := auth.NewJWKS(cfg.Auth.JWKSURL, logger.Named("jwks"))
		if err != nil {
			logger.Fatal("failed to load jwks", zap.Error(err))
		}
		defer jwks.EndBackground()
		decoderOpts = append(decoderOpts, auth.WithKeyfunc(jwks.Keyfunc))
	}

	selector := auth.NewSelector(kv, auth.NewCredentialDecoder(cfg.Auth.JWTSecret, decoderOpts...),
		auth.WithSelectorLogger(logger.Named("selector")),
		auth.WithSelectorMetrics(metrics))

	normalizer, err := identity.NewNormalizer(
		identity.WithLogger(logger.Named("identity")),
		identity.WithMetrics(metrics),
		identity.WithDispatcher(dispatcher))
	if err != nil {
		logger.Fatal("failed to build identity normalizer", zap.Error(err))
	}

	authorityClient := authority.NewClient(authority.Options{
		HTTPClient: &http.Client{Transport: &auth.BearerTransport{
			Base:        http.DefaultTransport,
			Credentials: selector,
			Dispatcher:  dispatcher,
			Logger:      logger.Named("transport"),
		}},
		StatusURL: cfg.Authority.StatusURL(),
		Timeout:   cfg.Authority.Timeout(),
		Logger:    logger.Named("authority"),
	})

	sessionGuard := guard.New(authorityClient,
		guard.WithSignInPath(cfg.Auth.SignInPath),
		guard.WithSignOutPath(cfg.Auth.SignOutPath),
		guard.WithCoalescing(cfg.Auth.CoalesceChecks),
		guard.WithLogger(logger.Named("guard")),
		guard.WithMetrics(metrics),
		guard.WithDispatcher(dispatcher))

	sessionService := service.NewSessionService(service.SessionDependencies{
		Store:      kv,
		Selector:   selector,
		Normalizer: normalizer,
		Dispatcher: dispatcher,
		Logger:     logger.Named("session"),
	})
	worker.StartSessionWorker(service.NewSessionListener(dispatcher, sessionService, logger.Named("listener")))

	routeGuard := auth.NewRouteGuard(sessionGuard, func(c *fiber.Ctx) domain.SessionState {
		return sessionService.State(c.UserContext())
	}, logger.Named("route_guard"))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, string(cfg.Store.Backend), kv),
		Session:     handlers.NewSessionHandler(sessionService, cfg.Auth.SignInPath),
		Dashboard:   handlers.NewDashboardHandler(),
		RouteGuard:  routeGuard,
		Identities:  sessionService,
		Gatherer:    registry,
		SignOutPath: cfg.Auth.SignOutPath,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
