package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProperties_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		props *Properties
		want  bool
	}{
		{
			name:  "nil is invalid",
			props: nil,
			want:  false,
		},
		{
			name:  "missing restart command is invalid",
			props: &Properties{ClientID: "1aaa"},
			want:  false,
		},
		{
			name:  "missing client id is invalid",
			props: &Properties{RestartCommand: []string{"app"}},
			want:  false,
		},
		{
			name:  "client id and restart command is valid",
			props: &Properties{ClientID: "1aaa", RestartCommand: []string{"app"}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.props.IsValid())
		})
	}
}

func TestProperties_IsXterm(t *testing.T) {
	assert.True(t, (&Properties{Program: "xterm"}).IsXterm())
	assert.True(t, (&Properties{Program: "XTerm"}).IsXterm())
	assert.False(t, (&Properties{Program: "firefox"}).IsXterm())
}

func TestProperties_IncrementRestartAttempts(t *testing.T) {
	p := NewProperties("1aaa", "host", "app")
	for i := 0; i < MaxRestartAttempts; i++ {
		assert.False(t, p.IncrementRestartAttempts(), "attempt %d should not exceed ceiling", i+1)
	}
	assert.True(t, p.IncrementRestartAttempts(), "11th attempt must exceed MaxRestartAttempts")
}

func TestProperties_ResetRestartAttempts(t *testing.T) {
	p := NewProperties("1aaa", "host", "app")
	p.IncrementRestartAttempts()
	p.IncrementRestartAttempts()
	assert.Equal(t, 2, p.RestartAttempts())
	p.ResetRestartAttempts()
	assert.Equal(t, 0, p.RestartAttempts())
}

func TestProperties_Clone(t *testing.T) {
	p := NewProperties("1aaa", "host", "app")
	p.Environment = []string{"A=1"}
	p.RestartCommand = []string{"app", "--flag"}

	cp := p.Clone()
	cp.Environment[0] = "A=2"
	cp.RestartCommand[0] = "other"

	assert.Equal(t, "A=1", p.Environment[0], "clone must not alias the original slice")
	assert.Equal(t, "app", p.RestartCommand[0])
}

func TestProperties_StartupTimeout(t *testing.T) {
	p := NewProperties("1aaa", "host", "app")
	assert.Equal(t, "", p.StartupTimeoutID())

	p.ArmStartupTimeout("timer-1")
	assert.Equal(t, "timer-1", p.StartupTimeoutID())

	p.DisarmStartupTimeout()
	assert.Equal(t, "", p.StartupTimeoutID())
}

func TestManagerState_String(t *testing.T) {
	assert.Equal(t, "Startup", Startup.String())
	assert.Equal(t, "ShutdownPhase2", ShutdownPhase2.String())
	assert.Equal(t, "Unknown", ManagerState(99).String())
}

func TestClientState_String(t *testing.T) {
	assert.Equal(t, "Idle", ClientIdle.String())
	assert.Equal(t, "Disconnected", ClientDisconnected.String())
}
