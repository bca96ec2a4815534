package services

import "context"

// Event is a session transition observed by the dependent stores.
type Event int

const (
	// EventEstablished fires when the session becomes authenticated.
	EventEstablished Event = iota + 1
	// EventEnded fires when an authenticated (or validating) session is
	// torn down.
	EventEnded
)

func (e Event) String() string {
	switch e {
	case EventEstablished:
		return "established"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Listener receives session events synchronously on the goroutine that
// caused the transition.
type Listener func(ctx context.Context, e Event)
