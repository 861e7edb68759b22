package events

import "context"

// Streams
const (
	StreamSession = "events:session"
	StreamAction  = "events:action"
)

// Event types
const (
	EventSessionStateChanged = "session_state_changed"
	EventModalOpened         = "modal_opened"
	EventModalClosed         = "modal_closed"
	EventActionSubmitted     = "action_submitted"
	EventActionConfirmed     = "action_confirmed"
	EventActionFailed        = "action_failed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Address extracts the wallet address an event belongs to, if any.
func (e Event) Address() string {
	addr, _ := e.Payload["address"].(string)
	return addr
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher discards events. Used in tests and in tools that do not carry
// a Redis connection.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
