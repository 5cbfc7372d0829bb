// Package client implements the per-client handle and its XSMP sub-state
// machine.
package client

import (
	"fmt"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

// Conn is the transport-level handle the manager uses to talk back to one
// registered peer. The XSMP/ICE wire transport is an external collaborator;
// the manager only ever calls through this narrow interface.
type Conn interface {
	SendSaveYourself(saveType domain.SaveType, shutdown bool, interact domain.InteractStyle, fast bool) error
	SendSaveYourselfPhase2() error
	SendInteract() error
	SendShutdownCancelled() error
	SendSaveComplete() error
	SendDie() error
	Close() error
}

// Client is a handle representing one registered XSMP peer.
type Client struct {
	Conn  Conn
	Props *domain.Properties
	State domain.ClientState

	saveTimeout arch.Timer
}

// New creates a Client bound to the given connection and properties, in
// the initial Idle sub-state.
func New(conn Conn, props *domain.Properties) *Client {
	return &Client{
		Conn:  conn,
		Props: props,
		State: domain.ClientIdle,
	}
}

// ID returns the client's identifier, the join key to its Properties.
func (c *Client) ID() domain.ClientId {
	return c.Props.ClientID
}

// transitions enumerates the sub-state machine. A transition
// not present here is a protocol violation; the manager closes the
// connection instead of applying it.
var transitions = map[domain.ClientState]map[domain.ClientState]bool{
	domain.ClientIdle: {
		domain.ClientSavingLocal: true,
		domain.ClientSaving:      true,
	},
	domain.ClientSavingLocal: {
		domain.ClientIdle: true,
	},
	domain.ClientSaving: {
		domain.ClientWaitForPhase2:   true,
		domain.ClientInteracting:     true,
		domain.ClientWaitForInteract: true,
		domain.ClientSaveDone:        true,
	},
	domain.ClientWaitForPhase2: {
		domain.ClientSaving: true,
	},
	domain.ClientWaitForInteract: {
		domain.ClientInteracting: true,
		domain.ClientSaving:      true,
	},
	domain.ClientInteracting: {
		domain.ClientSaving: true,
	},
	domain.ClientSaveDone: {
		domain.ClientIdle: true,
	},
}

// CanTransition reports whether moving from `from` to `to` is legal.
// Disconnection is always legal from any state, matching "Any -disconnect->
// Disconnected" in the protocol.
func CanTransition(from, to domain.ClientState) bool {
	if to == domain.ClientDisconnected {
		return true
	}
	return transitions[from][to]
}

// Transition moves the client to a new sub-state, returning an error if the
// move is not legal from the current state. Callers that catch the error
// must close the connection (protocol violations are handled by
// closing the connection with cleanup).
func (c *Client) Transition(to domain.ClientState) error {
	if !CanTransition(c.State, to) {
		return fmt.Errorf("protocol violation: client %s cannot move %s -> %s", c.ID(), c.State, to)
	}
	c.State = to
	return nil
}

// CancelSaveTimeout stops the armed save-timeout, if any.
func (c *Client) CancelSaveTimeout() {
	if c.saveTimeout != nil {
		c.saveTimeout.Stop()
		c.saveTimeout = nil
	}
}

// SetSaveTimeout records the timer handle backing the currently armed
// save-timeout, replacing (without stopping) any prior handle. Manager code
// is expected to call CancelSaveTimeout first when replacing an active one.
func (c *Client) SetSaveTimeout(t arch.Timer) {
	c.saveTimeout = t
}

// HasSaveTimeout reports whether a save-timeout is currently armed. A
// client in WaitForPhase2 must never have one armed.
func (c *Client) HasSaveTimeout() bool {
	return c.saveTimeout != nil
}
