package worker

import (
	"github.com/spec-kit/dashboard-session/internal/service"
)

// StartSessionWorker registers session event handlers.
func StartSessionWorker(listener *service.SessionListener) {
	if listener == nil {
		return
	}
	listener.RegisterHandlers()
}
