package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/rosbridgego/rosbridge/frame"
)

// Session is the public handle onto a single rosbridge WebSocket
// connection. Every method is safe for concurrent use. Internally it is a
// thin, thread-safe front for the actor goroutine spawned by New.
type Session struct {
	cfg    Config
	logger *slog.Logger
	act    *actor
}

// Option customizes Session construction. The only current use is
// injecting a fake Dialer for tests; production callers do not need one.
type Option func(*Session)

// WithDialer overrides the WebSocket dialer. Intended for tests.
func WithDialer(d Dialer) Option {
	return func(s *Session) { s.act.dialer = d }
}

// New validates cfg, applies its defaults, and starts a Session connecting
// to cfg.URL in the background. Connection happens asynchronously; the
// first Subscribe/Advertise/CallService call blocks only as long as the
// single-threaded actor takes to process the command, not until a
// connection succeeds.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.applyDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		cfg:    cfg,
		logger: logger,
		act:    newActor(cfg, logger, newGorillaDialer()),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.act.run(ctx)
	return s, nil
}

func (s *Session) submit(cmd command) {
	select {
	case s.act.cmds <- cmd:
	case <-s.act.closedCh:
	}
}

// submitWait submits cmd and blocks until the actor's closedCh fires or the
// command is accepted; used by callers (like PublisherHandle.Close) that
// then wait on a reply/done channel embedded in cmd.
func (s *Session) submitWait(cmd command) error {
	select {
	case s.act.cmds <- cmd:
		return nil
	case <-s.act.closedCh:
		return ErrShuttingDown
	}
}

// Subscribe registers interest in topic, returning a handle that yields
// decoded payloads as they arrive. Subsequent Subscribe calls for the same
// topic share the underlying wire subscription (refcounted) but each get
// their own independent delivery queue.
func (s *Session) Subscribe(topic, msgType string, opts frame.SubscribeOptions) (*SubscriptionHandle, error) {
	depth := 0
	if opts.QueueLength != nil {
		depth = *opts.QueueLength
	}
	reply := make(chan subscribeResult, 1)
	s.submit(cmdSubscribe{topic: topic, msgType: msgType, opts: opts, depth: depth, reply: reply})

	select {
	case res := <-reply:
		if res.err != nil {
			return nil, res.err
		}
		return &SubscriptionHandle{subID: res.subID, topic: topic, queue: res.queue, sess: s}, nil
	case <-s.act.closedCh:
		return nil, ErrShuttingDown
	}
}

// Advertise registers topic as one this session will publish on, returning
// a handle used to publish and, eventually, unadvertise. Multiple
// Advertise calls for the same topic share a refcounted wire
// advertisement.
func (s *Session) Advertise(topic, msgType string) (*PublisherHandle, error) {
	reply := make(chan advertiseResult, 1)
	s.submit(cmdAdvertise{topic: topic, msgType: msgType, reply: reply})

	select {
	case res := <-reply:
		if res.err != nil {
			return nil, res.err
		}
		return &PublisherHandle{topic: topic, advID: res.advID, sess: s}, nil
	case <-s.act.closedCh:
		return nil, ErrShuttingDown
	}
}

// Publish sends payload on topic without checking out a handle first.
// topic must already be advertised by this session (via Advertise), or
// ErrNotAdvertised is returned.
func (s *Session) Publish(topic string, payload json.RawMessage) error {
	reply := make(chan error, 1)
	s.submit(cmdPublish{topic: topic, payload: payload, reply: reply})

	select {
	case err := <-reply:
		return err
	case <-s.act.closedCh:
		return ErrShuttingDown
	}
}

// CallService invokes a rosbridge service and waits for its response. If
// ctx has no deadline and cfg.ServiceCallTimeout is non-zero, that timeout
// is applied as a default.
func (s *Session) CallService(ctx context.Context, service string, args json.RawMessage, svcType string) (json.RawMessage, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.cfg.ServiceCallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ServiceCallTimeout)
		defer cancel()
	}

	reply := make(chan callResult, 1)
	s.submit(cmdCallService{service: service, args: args, svcType: svcType, reply: reply, cancel: ctx.Done()})

	select {
	case res := <-reply:
		if errors.Is(res.err, ErrCancelled) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return res.values, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrCancelled
	case <-s.act.closedCh:
		return nil, ErrShuttingDown
	}
}

// AdvertiseService installs handler to answer inbound call_service frames
// for service. Only one handler may be installed per service at a time.
func (s *Session) AdvertiseService(service, svcType string, handler ServiceHandler) error {
	reply := make(chan error, 1)
	s.submit(cmdAdvertiseService{service: service, svcType: svcType, handler: handler, reply: reply})

	select {
	case err := <-reply:
		return err
	case <-s.act.closedCh:
		return ErrShuttingDown
	}
}

// UnadvertiseService removes a previously installed service handler.
func (s *Session) UnadvertiseService(service string) {
	s.submit(cmdUnadvertiseService{service: service})
}

// Shutdown tears down every live subscription and advertisement, closes
// the socket, and stops the actor goroutine. It blocks until teardown
// completes or ctx is done.
func (s *Session) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case s.act.cmds <- cmdShutdown{done: done}:
	case <-s.act.closedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.act.closedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

