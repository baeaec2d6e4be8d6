package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/events"
)

// SignOutReasonUnauthorized marks a sign-out triggered by a rejected call.
const SignOutReasonUnauthorized = "unauthorized_response"

// SessionListener reacts to session events. A 401 from the authority of
// record clears the local session so the next navigation goes to sign-in.
type SessionListener struct {
	dispatcher events.Dispatcher
	sessions   *SessionService
	logger     *zap.Logger
}

// NewSessionListener creates the listener.
func NewSessionListener(dispatcher events.Dispatcher, sessions *SessionService, logger *zap.Logger) *SessionListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionListener{dispatcher: dispatcher, sessions: sessions, logger: logger}
}

// RegisterHandlers subscribes to events.
func (l *SessionListener) RegisterHandlers() {
	if l.dispatcher == nil {
		return
	}
	l.dispatcher.Subscribe(events.EventUnauthorizedResponse, l.handleUnauthorizedResponse)
	l.dispatcher.Subscribe(events.EventNavigationRedirected, l.handleNavigationRedirected)
	l.dispatcher.Subscribe(events.EventSignedOut, l.handleSignedOut)
}

func (l *SessionListener) handleUnauthorizedResponse(ctx context.Context, event events.Event) error {
	l.logger.Info("UnauthorizedResponse", zap.String("path", event.Path), zap.Any("payload", event.Payload))
	return l.sessions.SignOut(ctx, SignOutReasonUnauthorized)
}

func (l *SessionListener) handleNavigationRedirected(_ context.Context, event events.Event) error {
	l.logger.Debug("NavigationRedirected", zap.String("path", event.Path), zap.Any("payload", event.Payload))
	return nil
}

func (l *SessionListener) handleSignedOut(_ context.Context, event events.Event) error {
	l.logger.Debug("SignedOut", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}
