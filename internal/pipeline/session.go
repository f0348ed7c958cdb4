package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ChaXxl/LysToolBox/internal/dispatch"
)

// Session is a single-worker event loop in front of a dispatcher. The
// proxy layer hands responses to Submit as they complete; the worker
// processes them one at a time in delivery order, so the dataset sees
// captures and certificate patches in the order the browser produced
// them.
type Session struct {
	d      *dispatch.Dispatcher
	events chan dispatch.Event
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewSession builds a session over the dispatcher with the given queue
// depth. A depth of zero makes Submit fully synchronous with the worker.
func NewSession(d *dispatch.Dispatcher, depth int) *Session {
	return &Session{
		d:      d,
		events: make(chan dispatch.Event, depth),
		done:   make(chan struct{}),
		log:    zap.L().With(zap.String("component", "session")),
	}
}

// Submit queues one response event. It blocks when the queue is full and
// reports false once the session is shutting down or the context expires.
// An accepted event is guaranteed to reach the worker: the read lock
// keeps Close from closing intake while a send is in flight, so every
// enqueue happens before the drain starts.
func (s *Session) Submit(ctx context.Context, ev dispatch.Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}

	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run consumes events until Close is called, then drains whatever is
// already queued before returning. Cancelling the context abandons the
// queue instead.
func (s *Session) Run(ctx context.Context) error {
	matched, unmatched := 0, 0
	defer func() {
		s.log.Info("session finished", zap.Int("matched", matched), zap.Int("unmatched", unmatched))
	}()

	handle := func(ev dispatch.Event) {
		if s.d.Dispatch(ev) == "" {
			unmatched++
		} else {
			matched++
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			handle(ev)
		case <-s.done:
			// Drain the queue, then stop.
			for {
				select {
				case ev := <-s.events:
					handle(ev)
				case <-ctx.Done():
					return ctx.Err()
				default:
					return nil
				}
			}
		}
	}
}

// Close stops intake and lets Run finish the queued backlog. It waits for
// in-flight Submit calls before signalling the worker. Safe to call more
// than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
