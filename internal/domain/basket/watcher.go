package basket

import (
	"context"
	"sync"
	"time"
)

// notifier fans out write notifications to active watchers. Sends are
// non-blocking: a watcher that has not consumed the previous signal simply
// re-reads once, which is enough for an eventually consistent count display.
type notifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func (n *notifier) subscribe() chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[chan struct{}]struct{})
	}
	ch := make(chan struct{}, 1)
	n.subs[ch] = struct{}{}
	return ch
}

func (n *notifier) unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.subs, ch)
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch emits the session's basket item count at the given interval and after
// every write made through this manager. The first count is emitted
// immediately. The channel closes when ctx is cancelled. Read errors are
// skipped; the next tick retries.
func (m *Manager) Watch(ctx context.Context, session string, interval time.Duration) <-chan int {
	out := make(chan int, 1)
	changes := m.notifier.subscribe()

	go func() {
		defer close(out)
		defer m.notifier.unsubscribe(changes)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		emit := func() {
			b, err := m.Load(ctx, session)
			if err != nil {
				return
			}
			select {
			case out <- b.ItemCount():
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit()
			case <-changes:
				emit()
			}
		}
	}()

	return out
}
