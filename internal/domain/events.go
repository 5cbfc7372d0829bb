package domain

import "time"

// EventType enumerates the manager lifecycle events a Notifier observes:
// the Go rendering of the GObject virtual-slot signals (state-changed,
// client-registered, shutdown-cancelled) xfce4-session's manager emits.
type EventType int

const (
	EventStateChanged EventType = iota
	EventClientRegistered
	EventClientRemoved
	EventShutdownCancelled
)

func (e EventType) String() string {
	switch e {
	case EventStateChanged:
		return "state-changed"
	case EventClientRegistered:
		return "client-registered"
	case EventClientRemoved:
		return "client-removed"
	case EventShutdownCancelled:
		return "shutdown-cancelled"
	default:
		return "unknown"
	}
}

// Event is a single notification posted to every subscribed Notifier.
type Event struct {
	Type      EventType
	Timestamp time.Time

	// Populated for EventStateChanged.
	OldState ManagerState
	NewState ManagerState

	// Populated for EventClientRegistered / EventClientRemoved.
	ClientID ClientId

	// Populated for EventClientRegistered: the registering client's own
	// properties, plus the previous_id it registered with, if any. A
	// matched previous_id is reused as the client's id, so PreviousID then
	// equals ClientID and the history store adds the registration to the
	// existing Client node; it writes a RESTARTED_AS edge only when the
	// two ids differ.
	Program     string
	Hostname    string
	PreviousID  ClientId
	SessionName string
}
