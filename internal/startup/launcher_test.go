package startup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// instantTime fires AfterFunc callbacks synchronously so timeout tests don't
// need to sleep.
type instantTime struct{}

func (instantTime) Now() time.Time { return time.Time{} }
func (instantTime) AfterFunc(d time.Duration, f func()) arch.Timer {
	f()
	return noopTimer{}
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

// neverTime arms a real timer of the requested duration, used where the
// test wants to Cancel before it fires.
type neverTime struct{}

func (neverTime) Now() time.Time { return time.Time{} }
func (neverTime) AfterFunc(d time.Duration, f func()) arch.Timer {
	t := time.AfterFunc(d, f)
	return &realTimer{t}
}

type realTimer struct{ t *time.Timer }

func (r *realTimer) Stop() bool { return r.t.Stop() }

func TestLauncher_EmptyCommandTimesOutImmediately(t *testing.T) {
	l := New(nopLogger{}, instantTime{}, time.Millisecond)
	var mu sync.Mutex
	var called *domain.Properties
	props := &domain.Properties{ClientID: "1aaa"}

	l.Launch(props, func(p *domain.Properties) {
		mu.Lock()
		called = p
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, called)
	assert.Equal(t, domain.ClientId("1aaa"), called.ClientID)
}

func TestLauncher_CancelStopsTimeout(t *testing.T) {
	l := New(nopLogger{}, neverTime{}, time.Hour)
	props := &domain.Properties{ClientID: "1aaa", RestartCommand: []string{"sleep", "5"}}

	fired := false
	l.Launch(props, func(*domain.Properties) { fired = true })
	l.Cancel("1aaa")

	assert.False(t, fired)
}
