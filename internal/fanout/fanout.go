// Package fanout implements the per-topic subscriber delivery registry: a
// topic <-> subscription-id mapping plus one bounded, oldest-drop FIFO per
// subscription. Adapted from the broadcast shape of an in-process event
// bus, but a bus's non-blocking drop-newest policy cannot express the
// oldest-drop backpressure this registry requires, so delivery here uses a
// mutex-guarded ring rather than a buffered channel.
package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Queue.Next once the queue has been closed and
// drained.
var ErrClosed = errors.New("fanout: queue closed")

// Queue is a bounded FIFO of decoded payload bytes for one subscription.
// Enqueuing onto a full queue drops the oldest buffered element — the
// registry never blocks the dispatch loop to apply backpressure.
type Queue struct {
	mu     sync.Mutex
	buf    []json.RawMessage
	depth  int
	notify chan struct{}
	closed bool
}

// NewQueue creates a Queue holding at most depth payloads. depth <= 0 is
// treated as 1.
func NewQueue(depth int) *Queue {
	if depth <= 0 {
		depth = 1
	}
	return &Queue{
		depth:  depth,
		notify: make(chan struct{}, 1),
	}
}

// Push enqueues payload, dropping the oldest buffered element first if the
// queue is already at depth. Returns true if an element was dropped to
// make room. Push on a closed queue is a silent no-op.
func (q *Queue) Push(payload json.RawMessage) (dropped bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if len(q.buf) >= q.depth {
		q.buf = q.buf[1:]
		dropped = true
	}
	q.buf = append(q.buf, payload)
	q.signalLocked()
	return dropped
}

// Next blocks until a payload is available, ctx is cancelled, or the queue
// is closed.
func (q *Queue) Next(ctx context.Context) (json.RawMessage, error) {
	for {
		q.mu.Lock()
		if len(q.buf) > 0 {
			v := q.buf[0]
			q.buf = q.buf[1:]
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Close marks the queue closed; any blocked or future Next call returns
// ErrClosed once the buffer is drained, and Push becomes a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.signalLocked()
}

// Drain discards and returns every currently buffered payload, used when a
// subscription handle is dropped with frames still queued.
func (q *Queue) Drain() []json.RawMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.buf
	q.buf = nil
	return out
}

func (q *Queue) signalLocked() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Registry tracks, per topic, the set of subscription ids currently
// listening, and each subscription's delivery Queue. It holds no payload
// itself beyond what each Queue buffers.
type Registry struct {
	mu        sync.Mutex
	topicSubs map[string]map[string]struct{}
	queues    map[string]*Queue
	topicOf   map[string]string
	logger    *slog.Logger
}

// NewRegistry creates an empty Registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		topicSubs: make(map[string]map[string]struct{}),
		queues:    make(map[string]*Queue),
		topicOf:   make(map[string]string),
		logger:    logger,
	}
}

// Subscribe registers subID as a listener on topic with a delivery queue of
// the given depth. firstForTopic reports whether this is the only
// subscription currently registered for topic — the caller uses this to
// decide whether to send a wire "subscribe" op.
func (r *Registry) Subscribe(topic, subID string, depth int) (queue *Queue, firstForTopic bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.topicSubs[topic]
	if !ok {
		set = make(map[string]struct{})
		r.topicSubs[topic] = set
	}
	firstForTopic = len(set) == 0
	set[subID] = struct{}{}

	q := NewQueue(depth)
	r.queues[subID] = q
	r.topicOf[subID] = topic
	return q, firstForTopic
}

// Unsubscribe removes subID from its topic and closes its queue.
// lastForTopic reports whether no subscriptions remain for that topic —
// the caller uses this to decide whether to send a wire "unsubscribe" op.
// Unsubscribing an unknown subID is a no-op.
func (r *Registry) Unsubscribe(subID string) (lastForTopic bool, topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topic, ok := r.topicOf[subID]
	if !ok {
		return false, ""
	}
	if q, ok := r.queues[subID]; ok {
		q.Close()
	}
	delete(r.queues, subID)
	delete(r.topicOf, subID)

	if set, ok := r.topicSubs[topic]; ok {
		delete(set, subID)
		if len(set) == 0 {
			delete(r.topicSubs, topic)
			lastForTopic = true
		}
	}
	return lastForTopic, topic
}

// Publish enqueues payload onto every subscription currently registered for
// topic, returning how many subscriptions received it. A full subscriber
// queue drops its oldest element; the drop is logged, not surfaced to the
// caller.
func (r *Registry) Publish(topic string, payload json.RawMessage) int {
	r.mu.Lock()
	set := r.topicSubs[topic]
	subIDs := make([]string, 0, len(set))
	for id := range set {
		subIDs = append(subIDs, id)
	}
	queues := make([]*Queue, len(subIDs))
	for i, id := range subIDs {
		queues[i] = r.queues[id]
	}
	r.mu.Unlock()

	delivered := 0
	for i, q := range queues {
		if q == nil {
			continue
		}
		if dropped := q.Push(payload); dropped {
			r.logger.Warn("subscriber queue overflow, dropped oldest frame",
				"topic", topic, "sub_id", subIDs[i])
		}
		delivered++
	}
	return delivered
}

// SubscriberCount returns how many subscription ids are currently
// registered for topic.
func (r *Registry) SubscriberCount(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topicSubs[topic])
}
