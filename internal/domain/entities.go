// Package domain holds the pure data model of the session manager: no I/O,
// no locking, just the records and enums described by the session state
// machine and the invariants they must hold.
package domain

import (
	"fmt"
	"strings"
)

// ClientId is the opaque XSMP identifier used to match a persisted record
// to a newly registered peer. It is stable across restarts of the same
// logical client.
type ClientId string

// RestartStyleHint directs the manager on whether/how to relaunch a client
// after it exits.
type RestartStyleHint int

const (
	RestartIfRunning RestartStyleHint = iota
	RestartAnyway
	RestartImmediately
	RestartNever
)

func (h RestartStyleHint) String() string {
	switch h {
	case RestartIfRunning:
		return "IfRunning"
	case RestartAnyway:
		return "Anyway"
	case RestartImmediately:
		return "Immediately"
	case RestartNever:
		return "Never"
	default:
		return "Unknown"
	}
}

// MaxRestartAttempts is the ceiling on counted exits of a
// RestartImmediately client; once exceeded, its Properties are demoted to
// the restart queue. Below the ceiling the client is not relaunched
// in-session either.
const MaxRestartAttempts = 10

// Properties is the per-client record of SM properties plus restart
// metadata. A zero-value Properties is never valid; use
// NewProperties or decode one from a session file.
type Properties struct {
	ClientID         ClientId
	Hostname         string
	Program          string
	CurrentDirectory string
	Environment      []string // ordered "NAME=value" pairs

	RestartCommand  []string
	CloneCommand    []string
	DiscardCommand  []string
	ShutdownCommand []string

	RestartStyleHint RestartStyleHint

	UserID    string
	ProcessID int

	Priority uint8 // default 50; lower launches earlier

	restartAttempts  int
	startupTimeoutID string // non-empty while a launch awaits registration
}

// DefaultPriority is used for synthesized Properties of a brand-new client
// that registered without prior persisted state.
const DefaultPriority = 50

// NewProperties builds a fresh Properties record for a client that has just
// registered for the first time (no previous_id supplied).
func NewProperties(id ClientId, hostname, program string) *Properties {
	return &Properties{
		ClientID:         id,
		Hostname:         hostname,
		Program:          program,
		RestartStyleHint: RestartIfRunning,
		Priority:         DefaultPriority,
	}
}

// IsValid reports whether the record has the fields required to be
// persisted: a non-empty client id and a restart command.
func (p *Properties) IsValid() bool {
	return p != nil && p.ClientID != "" && len(p.RestartCommand) > 0
}

// IsXterm reports whether this client is the known-broken xterm peer that
// the global SaveYourself pass must skip.
func (p *Properties) IsXterm() bool {
	return strings.EqualFold(p.Program, "xterm")
}

// RestartAttempts returns the current relaunch-attempt counter. It is not
// persisted beyond the current session.
func (p *Properties) RestartAttempts() int {
	return p.restartAttempts
}

// IncrementRestartAttempts records one more exit of the client and reports
// whether the ceiling has now been exceeded.
func (p *Properties) IncrementRestartAttempts() bool {
	p.restartAttempts++
	return p.restartAttempts > MaxRestartAttempts
}

// ResetRestartAttempts clears the relaunch counter. Called by the manager
// on every successful registration, not only at process start — matching
// xfsm-manager.c's own reset-on-successful-registration behavior.
func (p *Properties) ResetRestartAttempts() {
	p.restartAttempts = 0
}

// ArmStartupTimeout marks this entry as awaiting registration under the
// given timeout token.
func (p *Properties) ArmStartupTimeout(token string) {
	p.startupTimeoutID = token
}

// StartupTimeoutID returns the current timeout token, or "" if none armed.
func (p *Properties) StartupTimeoutID() string {
	return p.startupTimeoutID
}

// DisarmStartupTimeout clears the timeout token, e.g. on registration.
func (p *Properties) DisarmStartupTimeout() {
	p.startupTimeoutID = ""
}

// Clone deep-copies a Properties record. Queues hold unique owners of a
// Properties; Clone exists only for tests, never for routine queue
// transfers.
func (p *Properties) Clone() *Properties {
	cp := *p
	cp.Environment = append([]string(nil), p.Environment...)
	cp.RestartCommand = append([]string(nil), p.RestartCommand...)
	cp.CloneCommand = append([]string(nil), p.CloneCommand...)
	cp.DiscardCommand = append([]string(nil), p.DiscardCommand...)
	cp.ShutdownCommand = append([]string(nil), p.ShutdownCommand...)
	return &cp
}

func (p *Properties) String() string {
	return fmt.Sprintf("Properties{id=%s program=%s hint=%s}", p.ClientID, p.Program, p.RestartStyleHint)
}

// FailsafeClient is an argv plus a target screen index, used only when no
// prior session exists.
type FailsafeClient struct {
	Command      []string
	ScreenTarget int
}

// ManagerState is the global manager state machine's current state.
type ManagerState int

const (
	Startup ManagerState = iota
	Idle
	Checkpoint
	Shutdown
	ShutdownPhase2
)

func (s ManagerState) String() string {
	switch s {
	case Startup:
		return "Startup"
	case Idle:
		return "Idle"
	case Checkpoint:
		return "Checkpoint"
	case Shutdown:
		return "Shutdown"
	case ShutdownPhase2:
		return "ShutdownPhase2"
	default:
		return "Unknown"
	}
}

// ClientState is a registered client's sub-state.
type ClientState int

const (
	ClientIdle ClientState = iota
	ClientSavingLocal
	ClientSaving
	ClientWaitForPhase2
	ClientWaitForInteract
	ClientInteracting
	ClientSaveDone
	ClientDisconnected
)

func (s ClientState) String() string {
	switch s {
	case ClientIdle:
		return "Idle"
	case ClientSavingLocal:
		return "SavingLocal"
	case ClientSaving:
		return "Saving"
	case ClientWaitForPhase2:
		return "WaitForPhase2"
	case ClientWaitForInteract:
		return "WaitForInteract"
	case ClientInteracting:
		return "Interacting"
	case ClientSaveDone:
		return "SaveDone"
	case ClientDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// ShutdownType is the user-facing shutdown choice.
type ShutdownType int

const (
	ShutdownLogout ShutdownType = iota
	ShutdownHalt
	ShutdownReboot
	ShutdownSuspend
	ShutdownHibernate
)

func (t ShutdownType) String() string {
	switch t {
	case ShutdownLogout:
		return "Logout"
	case ShutdownHalt:
		return "Halt"
	case ShutdownReboot:
		return "Reboot"
	case ShutdownSuspend:
		return "Suspend"
	case ShutdownHibernate:
		return "Hibernate"
	default:
		return "Unknown"
	}
}

// SaveType and InteractStyle parametrize a SaveYourself request.
type SaveType int

const (
	SaveLocal SaveType = iota
	SaveGlobal
	SaveBoth
)

type InteractStyle int

const (
	InteractNone InteractStyle = iota
	InteractErrors
	InteractAny
)
