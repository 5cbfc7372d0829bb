package manager

import "errors"

// Error kinds surfaced to callers. These are sentinel errors;
// callers use errors.Is to distinguish them from wrapped I/O failures.
var (
	// ErrUnknownPreviousID is returned by RegisterClient when a
	// previous_id is supplied but matches no entry in the pending or
	// starting queues.
	ErrUnknownPreviousID = errors.New("manager: unknown previous client id")

	// ErrProtocolViolation is returned when a client sends a message
	// illegal in its current sub-state or the manager's current state.
	// For a known client the manager has already closed its connection
	// (via CloseClient) before returning this.
	ErrProtocolViolation = errors.New("manager: protocol violation")

	// ErrBadState is returned by IPC-facing operations that are illegal
	// in the manager's current state (e.g. Checkpoint while not Idle).
	ErrBadState = errors.New("manager: operation not legal in current state")

	// ErrUnsupportedShutdownType names the unsupported-shutdown-type error
	// kind. No Manager method returns it: RequestShutdown does not
	// range-check its argument, and the IPC layer rejects out-of-range
	// types with its own error.
	ErrUnsupportedShutdownType = errors.New("manager: unsupported shutdown type")
)
