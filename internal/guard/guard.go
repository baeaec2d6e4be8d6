// Package guard decides whether a protected navigation may proceed or must be
// sent to sign-in.
package guard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/dashboard-session/internal/domain"
	"github.com/spec-kit/dashboard-session/internal/events"
	"github.com/spec-kit/dashboard-session/internal/observability"
)

const (
	DefaultSignInPath  = "sign-in"
	DefaultSignOutPath = "/sign-out"
)

// Redirect reasons.
const (
	ReasonSessionIncomplete = "session_incomplete"
	ReasonRemoteRejected    = "remote_rejected"
	ReasonRemoteCheckFailed = "remote_check_failed"
	ReasonCancelled         = "navigation_cancelled"
)

// SessionChecker asks the authority of record whether the session is still accepted.
type SessionChecker interface {
	CheckSession(ctx context.Context, state domain.SessionState) (bool, error)
}

// SessionCheckerFunc adapts a function to SessionChecker.
type SessionCheckerFunc func(ctx context.Context, state domain.SessionState) (bool, error)

// CheckSession calls f.
func (f SessionCheckerFunc) CheckSession(ctx context.Context, state domain.SessionState) (bool, error) {
	return f(ctx, state)
}

// Guard authorizes protected navigations. It holds no session state of its
// own and never caches a remote result.
type Guard struct {
	checker     SessionChecker
	signInPath  string
	signOutPath string
	coalesce    bool
	group       singleflight.Group
	logger      *zap.Logger
	metrics     *observability.Metrics
	dispatcher  events.Dispatcher
}

// Option customizes a Guard.
type Option func(*Guard)

// WithSignInPath sets the redirect target.
func WithSignInPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.signInPath = path
		}
	}
}

// WithSignOutPath sets the path that never produces a return-to value.
func WithSignOutPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.signOutPath = path
		}
	}
}

// WithCoalescing shares one in-flight remote check between concurrent
// navigations presenting the same access credential.
func WithCoalescing(enabled bool) Option {
	return func(g *Guard) { g.coalesce = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics records decisions and remote check results.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// WithDispatcher publishes a navigation event for every decision.
func WithDispatcher(d events.Dispatcher) Option {
	return func(g *Guard) { g.dispatcher = d }
}

// New builds a Guard around checker.
func New(checker SessionChecker, opts ...Option) *Guard {
	g := &Guard{
		checker:     checker,
		signInPath:  DefaultSignInPath,
		signOutPath: DefaultSignOutPath,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ReturnTo renders the query carrying requestedPath back after sign-in. The
// sign-out path yields "" so sign-in never loops back into sign-out.
func (g *Guard) ReturnTo(requestedPath string) string {
	if requestedPath == g.signOutPath {
		return ""
	}
	return domain.ReturnToParam + "=" + requestedPath
}

// Authorize decides a navigation to requestedPath. An incomplete local state
// redirects without contacting the authority. Otherwise the remote check is
// awaited once; a rejection, an error or a cancelled ctx all redirect.
// A cancelled navigation is counted in the decision metric but publishes no
// navigation event, since nothing was navigated to or away from.
func (g *Guard) Authorize(ctx context.Context, requestedPath string, state domain.SessionState) domain.RedirectDecision {
	returnTo := g.ReturnTo(requestedPath)

	if !state.IsLocallyComplete() {
		g.logger.Debug("session incomplete",
			zap.String("path", requestedPath),
			zap.Strings("missing", state.Missing()),
			zap.Error(domain.ErrSessionIncomplete))
		return g.decide(ctx, requestedPath, domain.Redirect(g.signInPath, returnTo, ReasonSessionIncomplete))
	}

	select {
	case res := <-g.check(ctx, state):
		if res.err != nil {
			g.metrics.RecordRemoteCheck("error")
			g.logger.Warn("remote session check failed",
				zap.String("path", requestedPath),
				zap.Error(fmt.Errorf("%w: %v", domain.ErrRemoteCheckFailed, res.err)))
			return g.decide(ctx, requestedPath, domain.Redirect(g.signInPath, returnTo, ReasonRemoteCheckFailed))
		}
		if !res.authenticated {
			g.metrics.RecordRemoteCheck("rejected")
			return g.decide(ctx, requestedPath, domain.Redirect(g.signInPath, returnTo, ReasonRemoteRejected))
		}
		g.metrics.RecordRemoteCheck("live")
		return g.decide(ctx, requestedPath, domain.Allow())

	case <-ctx.Done():
		g.metrics.RecordRemoteCheck("cancelled")
		g.logger.Debug("navigation abandoned before remote check resolved",
			zap.String("path", requestedPath),
			zap.Error(ctx.Err()))
		d := domain.Redirect(g.signInPath, returnTo, ReasonCancelled)
		g.metrics.RecordGuardDecision(d.Allowed, d.Reason)
		return d
	}
}

type checkResult struct {
	authenticated bool
	err           error
}

// check starts the remote check as a single-shot task. The channel is
// buffered so an abandoned result never blocks the task.
func (g *Guard) check(ctx context.Context, state domain.SessionState) <-chan checkResult {
	ch := make(chan checkResult, 1)
	go func() {
		ok, err := g.run(ctx, state)
		ch <- checkResult{authenticated: ok, err: err}
	}()
	return ch
}

func (g *Guard) run(ctx context.Context, state domain.SessionState) (bool, error) {
	if g.checker == nil {
		return false, fmt.Errorf("no session checker configured")
	}
	if !g.coalesce {
		return g.checker.CheckSession(ctx, state)
	}
	// The shared call outlives any single caller; each caller still stops
	// waiting on its own ctx in Authorize. The checker's own timeout bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := g.group.Do(state.AccessToken, func() (interface{}, error) {
		return g.checker.CheckSession(shared, state)
	})
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

func (g *Guard) decide(ctx context.Context, path string, d domain.RedirectDecision) domain.RedirectDecision {
	g.metrics.RecordGuardDecision(d.Allowed, d.Reason)
	if g.dispatcher == nil {
		return d
	}

	evt := events.NewEvent(events.EventNavigationAllowed, path, events.NavigationPayload{})
	if !d.Allowed {
		evt = events.NewEvent(events.EventNavigationRedirected, path, events.NavigationPayload{
			Target:   d.Target,
			ReturnTo: d.ReturnTo,
			Reason:   d.Reason,
		})
	}
	if err := g.dispatcher.Publish(ctx, evt); err != nil {
		g.logger.Warn("navigation listeners failed", zap.Error(err))
	}
	return d
}
