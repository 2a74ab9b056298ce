package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rosbridgego/rosbridge/frame"
	"github.com/rosbridgego/rosbridge/internal/backoff"
	"github.com/rosbridgego/rosbridge/internal/fanout"
)

// subMeta is what the actor remembers about a live subscription beyond its
// fanout.Queue, so a resubscription sweep can replay the original
// "subscribe" op after a reconnect.
type subMeta struct {
	topic   string
	msgType string
	opts    frame.SubscribeOptions
}

// advEntry tracks one topic's advertisement refcount.
type advEntry struct {
	advID   string
	msgType string
	refs    int
}

// svcEntry tracks one advertised service.
type svcEntry struct {
	advID   string
	svcType string
	handler ServiceHandler
}

// actor is the single-threaded core: every field below is mutated only
// from run's goroutine. Application calls reach it exclusively through
// cmds; the connector and reader goroutines reach it exclusively through
// events. Both channels are safe for concurrent senders.
type actor struct {
	cfg    Config
	logger *slog.Logger
	dialer Dialer

	cmds   chan command
	events chan actorEvent

	conn    Conn
	state   State
	gen     uint64
	backoff *backoff.Sequence

	registry      *fanout.Registry
	subMeta       map[string]subMeta // subID -> meta
	advertised    map[string]*advEntry // topic -> entry
	pendingCalls  map[string]chan callResult
	serviceServers map[string]*svcEntry

	closedCh chan struct{}
	cancel   context.CancelFunc
}

func newActor(cfg Config, logger *slog.Logger, dialer Dialer) *actor {
	return &actor{
		cfg:            cfg,
		logger:         logger,
		dialer:         dialer,
		cmds:           make(chan command, 64),
		events:         make(chan actorEvent, 64),
		state:          StateDisconnected,
		backoff:        backoff.NewSequence(backoff.Config{Initial: cfg.InitialReconnectBackoff, Max: cfg.MaxReconnectBackoff}),
		registry:       fanout.NewRegistry(logger),
		subMeta:        make(map[string]subMeta),
		advertised:     make(map[string]*advEntry),
		pendingCalls:   make(map[string]chan callResult),
		serviceServers: make(map[string]*svcEntry),
		closedCh:       make(chan struct{}),
	}
}

// run is the actor's only goroutine that ever mutates actor state. It owns
// the connector lifecycle and processes commands and events until a
// shutdown command is handled.
func (a *actor) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer close(a.closedCh)
	defer cancel()

	a.state = StateConnecting
	a.startConnectAttempt(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.cmds:
			if a.handleCommand(ctx, cmd) {
				return
			}
		case ev := <-a.events:
			if ev.generation() != a.gen {
				continue // stale event from a superseded connection
			}
			a.handleEvent(ctx, ev)
		}
	}
}

func (a *actor) handleCommand(ctx context.Context, cmd command) (shutdown bool) {
	switch c := cmd.(type) {
	case cmdSubscribe:
		a.doSubscribe(c)
	case cmdUnsubscribe:
		a.doUnsubscribe(c.subID)
	case cmdAdvertise:
		a.doAdvertise(c)
	case cmdUnadvertise:
		a.doUnadvertise(c)
	case cmdPublish:
		c.reply <- a.doPublish(c.topic, c.payload)
	case cmdCallService:
		a.doCallService(c)
	case cmdCancelCall:
		delete(a.pendingCalls, c.callID)
	case cmdAdvertiseService:
		c.reply <- a.doAdvertiseService(c)
	case cmdUnadvertiseService:
		a.doUnadvertiseService(c.service)
	case cmdShutdown:
		a.doShutdown()
		close(c.done)
		return true
	default:
		a.logger.Error("session: unknown command type", "type", fmt.Sprintf("%T", cmd))
	}
	return false
}

func (a *actor) handleEvent(ctx context.Context, ev actorEvent) {
	switch e := ev.(type) {
	case evConnected:
		a.onConnected(ctx, e.conn)
	case evConnectFailed:
		a.onConnectFailed(ctx, e.err)
	case evFrame:
		a.onFrame(e.data)
	case evReadError:
		a.onDisconnected(ctx, e.err)
	case evBackoffElapsed:
		a.startConnectAttempt(ctx)
	}
}

// sendFrame writes an outbound frame to the socket if connected and
// returns ErrDisconnected otherwise. Registration commands (subscribe,
// advertise) ignore that error while not connected, since the
// resubscription sweep replays them on reconnect; Publish returns it to
// the caller.
func (a *actor) sendFrame(data []byte) error {
	if a.state != StateConnected || a.conn == nil {
		return ErrDisconnected
	}
	if err := a.conn.WriteMessage(websocketTextMessage, data); err != nil {
		return fmt.Errorf("session: write frame: %w", err)
	}
	return nil
}

func (a *actor) doPublish(topic string, payload json.RawMessage) error {
	if _, ok := a.advertised[topic]; !ok {
		return ErrNotAdvertised
	}
	data, err := frame.EncodePublish(topic, payload)
	if err != nil {
		return &SerializationError{Err: err}
	}
	return a.sendFrame(data)
}
