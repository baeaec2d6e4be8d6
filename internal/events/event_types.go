package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUnauthorizedResponse EventType = "unauthorized_response"
	EventNavigationRedirected EventType = "navigation_redirected"
	EventNavigationAllowed    EventType = "navigation_allowed"
	EventIdentityNormalized   EventType = "identity_normalized"
	EventSignedOut            EventType = "signed_out"
)

// Event represents a session event emitted by components.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Path      string      `json:"path,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, path string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Path:      path,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UnauthorizedResponsePayload describes an outbound call the authority rejected.
type UnauthorizedResponsePayload struct {
	Method         string `json:"method"`
	URL            string `json:"url"`
	CredentialKind string `json:"credential_kind,omitempty"`
}

// NavigationPayload describes a guard decision.
type NavigationPayload struct {
	Target   string `json:"target,omitempty"`
	ReturnTo string `json:"return_to,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// IdentityNormalizedPayload describes a normalized account record.
type IdentityNormalizedPayload struct {
	Variant   string `json:"variant"`
	AccountID string `json:"account_id"`
}

// SignedOutPayload lists the keys cleared on sign-out.
type SignedOutPayload struct {
	Reason string   `json:"reason"`
	Keys   []string `json:"keys"`
}
