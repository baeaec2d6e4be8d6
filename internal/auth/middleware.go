package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/domain"
	apperrors "github.com/spec-kit/dashboard-session/pkg/util/errorutil"
)

const (
	decisionKey = "session_decision"
	identityKey = "session_identity"
)

// Authorizer decides protected navigations.
type Authorizer interface {
	Authorize(ctx context.Context, requestedPath string, state domain.SessionState) domain.RedirectDecision
}

// StateResolver produces the local session state for a request.
type StateResolver func(c *fiber.Ctx) domain.SessionState

// IdentityLoader loads the canonical identity for the current session.
type IdentityLoader interface {
	Identity(ctx context.Context) (domain.Identity, error)
}

// RouteGuard redirects navigations to sign-in unless the session is accepted.
type RouteGuard struct {
	authorizer Authorizer
	resolve    StateResolver
	logger     *zap.Logger
}

// NewRouteGuard constructs middleware.
func NewRouteGuard(authorizer Authorizer, resolve StateResolver, logger *zap.Logger) *RouteGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteGuard{authorizer: authorizer, resolve: resolve, logger: logger}
}

// Handle enforces the session guard for protected routes.
func (m *RouteGuard) Handle(c *fiber.Ctx) error {
	state := m.resolve(c)
	decision := m.authorizer.Authorize(c.UserContext(), c.Path(), state)
	c.Locals(decisionKey, decision)

	if decision.Allowed {
		return c.Next()
	}

	location := decision.URL()
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	status := fiber.StatusSeeOther
	if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
		status = fiber.StatusFound
	}

	m.logger.Debug("navigation redirected",
		zap.String("path", c.Path()),
		zap.String("location", location),
		zap.String("reason", decision.Reason))
	return c.Redirect(location, status)
}

// DecisionFromContext retrieves the guard decision for the request.
func DecisionFromContext(c *fiber.Ctx) (domain.RedirectDecision, bool) {
	d, ok := c.Locals(decisionKey).(domain.RedirectDecision)
	return d, ok
}

// LoadIdentity normalizes the stored account record into Locals. A missing or
// unreadable record leaves Locals empty; role gates then refuse the request.
func LoadIdentity(loader IdentityLoader, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		id, err := loader.Identity(c.UserContext())
		if err != nil {
			logger.Debug("identity unavailable", zap.Error(err))
			return c.Next()
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// IdentityFromContext retrieves the identity loaded by LoadIdentity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	id, ok := c.Locals(identityKey).(domain.Identity)
	return id, ok
}

func requireIdentity(c *fiber.Ctx) (domain.Identity, error) {
	id, ok := IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("identity not loaded")
	}
	return id, nil
}
