package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xfce-go/xsmd/internal/domain"
)

type stubBackend struct {
	name string
	err  error
}

func (s stubBackend) Name() string { return s.name }
func (s stubBackend) Execute(context.Context, domain.ShutdownType) error { return s.err }

func TestChain_FirstSuccessWins(t *testing.T) {
	c := NewChain(
		stubBackend{name: "a", err: errors.New("not permitted")},
		stubBackend{name: "b", err: nil},
		stubBackend{name: "c", err: errors.New("should not be reached")},
	)
	assert.NoError(t, c.Execute(context.Background(), domain.ShutdownHalt))
}

func TestChain_AllFailReturnsLastError(t *testing.T) {
	c := NewChain(
		stubBackend{name: "a", err: errors.New("fail a")},
		stubBackend{name: "b", err: errors.New("fail b")},
	)
	err := c.Execute(context.Background(), domain.ShutdownReboot)
	assert.ErrorContains(t, err, "fail b")
}

func TestNoOp_LogoutAlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NoOp{}.Execute(context.Background(), domain.ShutdownLogout))
}

func TestNoOp_OtherActionsUnsupported(t *testing.T) {
	err := NoOp{}.Execute(context.Background(), domain.ShutdownHalt)
	assert.Error(t, err)
}

func TestCommandRunner_EmptyArgvIsNoop(t *testing.T) {
	assert.NoError(t, CommandRunner{}.RunShutdownCommand(nil))
}
