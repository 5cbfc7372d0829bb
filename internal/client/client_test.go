package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xfce-go/xsmd/internal/domain"
)

type fakeConn struct{}

func (fakeConn) SendSaveYourself(domain.SaveType, bool, domain.InteractStyle, bool) error { return nil }
func (fakeConn) SendSaveYourselfPhase2() error                                            { return nil }
func (fakeConn) SendInteract() error                                                      { return nil }
func (fakeConn) SendShutdownCancelled() error                                             { return nil }
func (fakeConn) SendSaveComplete() error                                                  { return nil }
func (fakeConn) SendDie() error                                                           { return nil }
func (fakeConn) Close() error                                                             { return nil }

func TestClient_TransitionLegal(t *testing.T) {
	c := New(fakeConn{}, domain.NewProperties("1aaa", "host", "app"))
	assert.Equal(t, domain.ClientIdle, c.State)

	assert.NoError(t, c.Transition(domain.ClientSaving))
	assert.Equal(t, domain.ClientSaving, c.State)

	assert.NoError(t, c.Transition(domain.ClientWaitForInteract))
	assert.NoError(t, c.Transition(domain.ClientInteracting))
	assert.NoError(t, c.Transition(domain.ClientSaving))
	assert.NoError(t, c.Transition(domain.ClientSaveDone))
}

func TestClient_TransitionIllegal(t *testing.T) {
	c := New(fakeConn{}, domain.NewProperties("1aaa", "host", "app"))
	err := c.Transition(domain.ClientInteracting)
	assert.Error(t, err)
	assert.Equal(t, domain.ClientIdle, c.State, "state must not change on an illegal transition")
}

func TestClient_DisconnectAlwaysLegal(t *testing.T) {
	for _, from := range []domain.ClientState{
		domain.ClientIdle, domain.ClientSaving, domain.ClientInteracting,
		domain.ClientWaitForPhase2, domain.ClientSaveDone,
	} {
		assert.True(t, CanTransition(from, domain.ClientDisconnected))
	}
}

func TestClient_SaveTimeoutLifecycle(t *testing.T) {
	c := New(fakeConn{}, domain.NewProperties("1aaa", "host", "app"))
	assert.False(t, c.HasSaveTimeout())

	c.SetSaveTimeout(&fakeTimer{})
	assert.True(t, c.HasSaveTimeout())

	c.CancelSaveTimeout()
	assert.False(t, c.HasSaveTimeout())
}

type fakeTimer struct{ stopped bool }

func (f *fakeTimer) Stop() bool {
	f.stopped = true
	return true
}
