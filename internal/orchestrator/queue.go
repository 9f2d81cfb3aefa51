package orchestrator

import (
	"sync"

	"github.com/reactcheck/reactcheck/internal/wire"
)

// queuedMsg is one inbound message awaiting processing by the
// orchestrator's loop.
type queuedMsg struct {
	msg wire.Inbound
}

// queue is the bounded inbound buffer between the router (transport's
// ReadLoop, running on its own goroutine) and the orchestrator's single
// owning loop. When full, it coalesces per spec §5: the oldest event that
// is safe to drop (necessary=true and not a recorded chain-root
// component) is evicted to make room; if no such candidate exists the
// incoming message itself is dropped instead, so the bound is never
// exceeded.
type queue struct {
	mu      sync.Mutex
	items   []queuedMsg
	max     int
	notify  chan struct{}
	onDrop  func(component string)
	isRoot  func(component string) bool
}

func newQueue(max int, onDrop func(string), isRoot func(string) bool) *queue {
	return &queue{
		max:    max,
		notify: make(chan struct{}, 1),
		onDrop: onDrop,
		isRoot: isRoot,
	}
}

func (q *queue) push(m wire.Inbound) {
	q.mu.Lock()
	var victim wire.Inbound
	accepted, evicted := true, false
	if len(q.items) < q.max {
		q.items = append(q.items, queuedMsg{msg: m})
	} else if v, ok := q.takeOldestDroppable(); ok {
		victim, evicted = v, true
		q.items = append(q.items, queuedMsg{msg: m})
	} else {
		accepted = false
	}
	q.mu.Unlock()

	switch {
	case !accepted:
		// No droppable candidate in the queue: drop the incoming message
		// instead, keeping the queue within its bound.
		q.recordDrop(m)
		return
	case evicted:
		q.recordDrop(victim)
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// takeOldestDroppable removes and returns the oldest queued item whose
// render is necessary=true and not a recorded chain-root component.
// Caller holds q.mu.
func (q *queue) takeOldestDroppable() (wire.Inbound, bool) {
	for i, it := range q.items {
		if q.droppable(it.msg) {
			victim := it.msg
			q.items = append(q.items[:i], q.items[i+1:]...)
			return victim, true
		}
	}
	return wire.Inbound{}, false
}

func (q *queue) droppable(m wire.Inbound) bool {
	if m.Render == nil {
		return false
	}
	if !m.Render.Necessary {
		return false
	}
	if q.isRoot != nil && q.isRoot(m.Render.ComponentName) {
		return false
	}
	return true
}

func (q *queue) recordDrop(m wire.Inbound) {
	if q.onDrop == nil || m.Render == nil {
		return
	}
	q.onDrop(m.Render.ComponentName)
}

// drain returns and clears every currently queued message.
func (q *queue) drain() []wire.Inbound {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := make([]wire.Inbound, len(q.items))
	for i, it := range q.items {
		out[i] = it.msg
	}
	q.items = q.items[:0]
	return out
}
