package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/dashboard-session/internal/events"
)

// BearerTransport attaches the selected credential to outbound requests.
// A 401 response is handed back unmodified and announced on the dispatcher;
// it is never retried here.
type BearerTransport struct {
	Base        http.RoundTripper
	Credentials CredentialSource
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req
	var kind string
	if t.Credentials != nil {
		if cred := t.Credentials.Current(ctx); cred != nil {
			out = req.Clone(ctx)
			out.Header.Set("Authorization", "Bearer "+cred.Token)
			kind = string(cred.Kind)
		}
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.Dispatcher != nil {
		evt := events.NewEvent(events.EventUnauthorizedResponse, req.URL.Path, events.UnauthorizedResponsePayload{
			Method:         req.Method,
			URL:            req.URL.Redacted(),
			CredentialKind: kind,
		})
		if perr := t.Dispatcher.Publish(ctx, evt); perr != nil {
			t.logger().Warn("unauthorized response listeners failed", zap.Error(perr))
		}
	}
	return resp, nil
}

func (t *BearerTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *BearerTransport) logger() *zap.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return zap.NewNop()
}
