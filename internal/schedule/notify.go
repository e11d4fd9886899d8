package schedule

import (
	"sync"

	logx "modewatch/pkg/logx"
)

// notifier fans a rule-list snapshot out to subscribed listeners after every
// mutation, so consumers can re-render without polling.
type notifier struct {
	log logx.Logger

	mu   sync.Mutex
	seq  uint64
	subs map[uint64]Listener
}

func newNotifier(log logx.Logger) *notifier {
	return &notifier{log: log, subs: map[uint64]Listener{}}
}

func (n *notifier) subscribe(fn Listener) (unsubscribe func()) {
	n.mu.Lock()
	n.seq++
	id := n.seq
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// notify invokes every listener with its own copy of the list. A panicking
// listener is logged and skipped; it cannot block other listeners or fail the
// mutation that triggered the notification.
func (n *notifier) notify(list []Schedule) {
	n.mu.Lock()
	fns := make([]Listener, 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		if fn == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					n.log.Error("schedule listener panicked", logx.Any("panic", r))
				}
			}()
			fn(copySchedules(list))
		}()
	}
}
