package control

import "sync"

// Sender accepts events from any goroutine. A shiny screen.Window
// satisfies it, as does Queue.
type Sender interface {
	Send(event interface{})
}

// Queue is an unbounded FIFO that producers on other goroutines fill and
// the owning loop drains. It stands in for the window event deque when no
// window exists.
type Queue struct {
	mu     sync.Mutex
	events []interface{}
	ready  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Send appends event and never blocks.
func (q *Queue) Send(event interface{}) {
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready fires at least once after events were queued.
func (q *Queue) Ready() <-chan struct{} { return q.ready }

// Drain removes and returns everything queued so far, oldest first.
func (q *Queue) Drain() []interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}
