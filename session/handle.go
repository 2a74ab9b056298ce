package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rosbridgego/rosbridge/internal/fanout"
)

// SubscriptionHandle is returned by Session.Subscribe. It yields a lazy,
// finite sequence of decoded payloads — finite because it terminates on
// session shutdown or when the handle itself is closed — and is not
// restartable: once closed, Next always returns ErrClosed.
type SubscriptionHandle struct {
	subID string
	topic string
	queue *fanout.Queue
	sess  *Session
	once  sync.Once
}

// Next blocks until a payload is available, ctx is done, or the handle (or
// its session) is closed.
func (h *SubscriptionHandle) Next(ctx context.Context) (json.RawMessage, error) {
	return h.queue.Next(ctx)
}

// Topic returns the topic this handle is subscribed to.
func (h *SubscriptionHandle) Topic() string { return h.topic }

// Close drops the subscription. Dropping the last handle for a topic sends
// an outbound unsubscribe. Frames still queued at the moment of Close are
// discarded, matching the cancellation invariant that a dropped handle's
// buffered frames never reach the application. Safe to call more than
// once.
func (h *SubscriptionHandle) Close() error {
	h.once.Do(func() {
		h.queue.Drain()
		h.sess.submit(cmdUnsubscribe{subID: h.subID})
	})
	return nil
}

// PublisherHandle is returned by Session.Advertise. Dropping the last
// handle for a topic sends an outbound unadvertise, after flushing any
// Publish already submitted through this handle.
type PublisherHandle struct {
	topic string
	advID string
	sess  *Session
	once  sync.Once
}

// Topic returns the topic this handle advertises.
func (h *PublisherHandle) Topic() string { return h.topic }

// Publish sends payload on the advertised topic.
func (h *PublisherHandle) Publish(payload json.RawMessage) error {
	return h.sess.Publish(h.topic, payload)
}

// Close decrements the advertisement refcount; on the last handle for the
// topic this blocks until the actor has processed every Publish this
// handle previously submitted and sent the outbound unadvertise.
func (h *PublisherHandle) Close() error {
	var err error
	h.once.Do(func() {
		done := make(chan struct{})
		if submitErr := h.sess.submitWait(cmdUnadvertise{topic: h.topic, advID: h.advID, done: done}); submitErr != nil {
			err = submitErr
			return
		}
		<-done
	})
	return err
}
