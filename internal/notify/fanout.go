// Package notify turns job-insert notifications from Postgres into filtered
// pushes to live in-process subscribers.
package notify

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jobdeck/jobdeck/internal/jobfeed"
)

// State is the lifecycle of a subscription. Closed is terminal.
type State int32

const (
	StateRegistered State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Subscription is one live subscriber. Events are delivered at most once,
// FIFO with respect to this subscription only; when the channel is full the
// event is dropped for this subscriber and delivery to others is unaffected.
type Subscription struct {
	ID     uuid.UUID
	minFit float64
	state  atomic.Int32
	ch     chan jobfeed.Job
}

// Events is the delivery channel. It is closed when the subscription closes.
func (s *Subscription) Events() <-chan jobfeed.Job { return s.ch }

// Activate wires the subscription into delivery. Only Registered
// subscriptions activate; calling Activate on a Closed subscription is a
// no-op.
func (s *Subscription) Activate() {
	s.state.CompareAndSwap(int32(StateRegistered), int32(StateActive))
}

func (s *Subscription) State() State { return State(s.state.Load()) }

const defaultBuffer = 16

// Hub is the subscriber registry. One Hub exists per process and is passed
// explicitly to whatever publishes or subscribes; there is no package-level
// instance.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*Subscription
	buffer int
	logger *log.Logger
}

// NewHub returns a registry whose subscriptions buffer up to buffer in-flight
// events each; buffer <= 0 selects the default.
func NewHub(buffer int, logger *log.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{subs: make(map[uuid.UUID]*Subscription), buffer: buffer, logger: logger}
}

// Subscribe registers a subscriber that wants jobs whose fit score is at
// least minFit. The subscription starts Registered; the caller activates it
// once its delivery loop is consuming Events.
func (h *Hub) Subscribe(minFit float64) *Subscription {
	sub := &Subscription{
		ID:     uuid.New(),
		minFit: minFit,
		ch:     make(chan jobfeed.Job, h.buffer),
	}
	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()
	subscribersGauge.Inc()
	return sub
}

// Unsubscribe closes sub and releases its channel. Safe to call more than
// once; after the first call no further events are delivered.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !sub.state.CompareAndSwap(int32(StateRegistered), int32(StateClosed)) &&
		!sub.state.CompareAndSwap(int32(StateActive), int32(StateClosed)) {
		return // already closed
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
	subscribersGauge.Dec()
}

// Publish offers the job to every active subscriber whose threshold the
// job's fit score meets. The score is the stored one, zero when absent.
// Delivery never blocks: a saturated subscriber drops this event and keeps
// its place in the registry.
func (h *Hub) Publish(job jobfeed.Job) {
	score := 0.0
	if job.FitScore != nil {
		score = jobfeed.ClampScore(*job.FitScore)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.State() != StateActive {
			continue
		}
		if score < sub.minFit {
			continue
		}
		select {
		case sub.ch <- job:
			deliveredCounter.Inc()
		default:
			droppedCounter.Inc()
			h.logger.Printf("[FANOUT] subscriber %s saturated, dropped job %s", sub.ID, job.ID)
		}
	}
}

// Len reports the number of registered subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
