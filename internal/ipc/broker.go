package ipc

import (
	"sync"

	"github.com/xfce-go/xsmd/internal/domain"
)

// broker fans a published domain.Event out to every subscriber: the
// many-producer/single-consumer channel pattern the manager's own Loop
// uses internally, here turned inside-out for IPC clients.
type broker struct {
	mu   sync.Mutex
	subs map[chan domain.Event]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[chan domain.Event]struct{})}
}

func (b *broker) subscribe() chan domain.Event {
	ch := make(chan domain.Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broker) unsubscribe(ch chan domain.Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *broker) publish(e domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber: drop rather than block the manager's
			// notify path.
		}
	}
}
