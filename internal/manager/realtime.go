package manager

import (
	"time"

	"github.com/xfce-go/xsmd/internal/arch"
)

// RealTime is the production arch.TimeProvider, backed by the standard
// library clock. Pair it with SerializingTimeProvider so expirations run on
// the manager's loop goroutine rather than on time.AfterFunc's own.
type RealTime struct{}

func (RealTime) Now() time.Time { return time.Now() }

func (RealTime) AfterFunc(d time.Duration, f func()) arch.Timer {
	return &stdTimer{time.AfterFunc(d, f)}
}

type stdTimer struct{ t *time.Timer }

func (s *stdTimer) Stop() bool { return s.t.Stop() }
