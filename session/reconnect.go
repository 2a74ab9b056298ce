package session

import (
	"context"
	"time"

	"github.com/rosbridgego/rosbridge/frame"
)

const websocketTextMessage = 1

// startConnectAttempt bumps the generation counter — invalidating any
// events still in flight from a superseded connection attempt — and
// spawns a goroutine that dials once and reports the outcome back as an
// event. The actor goroutine itself never blocks on network I/O.
func (a *actor) startConnectAttempt(ctx context.Context) {
	a.gen++
	gen := a.gen
	go func() {
		conn, err := a.dialer.Dial(ctx, a.cfg.URL)
		select {
		case <-ctx.Done():
			if conn != nil {
				_ = conn.Close()
			}
			return
		default:
		}
		if err != nil {
			select {
			case a.events <- evConnectFailed{gen: gen, err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case a.events <- evConnected{gen: gen, conn: conn}:
		case <-ctx.Done():
			_ = conn.Close()
		}
	}()
}

// startReader spawns the per-connection goroutine that turns blocking
// ReadMessage calls into evFrame/evReadError events tagged with gen, so
// the actor loop never performs blocking I/O itself.
func (a *actor) startReader(ctx context.Context, conn Conn, gen uint64) {
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case a.events <- evReadError{gen: gen, err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case a.events <- evFrame{gen: gen, data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (a *actor) onConnected(ctx context.Context, conn Conn) {
	a.conn = conn
	a.state = StateConnected
	a.backoff.Reset()
	a.logger.Info("session: connected", "url", a.cfg.URL)
	a.startReader(ctx, conn, a.gen)
	a.resubscribeAll()
}

func (a *actor) onConnectFailed(ctx context.Context, err error) {
	a.logger.Warn("session: connect failed", "url", a.cfg.URL, "error", err)
	a.scheduleReconnect(ctx)
}

func (a *actor) onDisconnected(ctx context.Context, err error) {
	if a.state == StateShuttingDown {
		return
	}
	a.logger.Warn("session: socket closed", "error", err)
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}

	for callID, ch := range a.pendingCalls {
		ch <- callResult{err: ErrDisconnected}
		delete(a.pendingCalls, callID)
	}

	if !a.cfg.AutoReconnect {
		a.state = StateDisconnected
		return
	}
	a.state = StateConnecting
	a.scheduleReconnect(ctx)
}

// scheduleReconnect waits out the next backoff delay in its own goroutine
// (never blocking the actor loop) and then posts evBackoffElapsed.
func (a *actor) scheduleReconnect(ctx context.Context) {
	gen := a.gen
	delay := a.backoff.Next()
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			select {
			case a.events <- evBackoffElapsed{gen: gen}:
			case <-ctx.Done():
			}
		case <-ctx.Done():
		}
	}()
}

// resubscribeAll replays every live subscribe/advertise op immediately on
// entering Connected, making subscriptions and advertisements durable
// across reconnects. Pending service calls are deliberately not replayed
// here — service calls are not idempotent, and onDisconnected already
// failed them with ErrDisconnected.
func (a *actor) resubscribeAll() {
	for subID, meta := range a.subMeta {
		data, err := frame.EncodeSubscribe(meta.topic, meta.msgType, subID, meta.opts)
		if err != nil {
			a.logger.Error("session: encode resubscribe", "topic", meta.topic, "error", err)
			continue
		}
		if err := a.sendFrame(data); err != nil {
			a.logger.Warn("session: resubscribe failed", "topic", meta.topic, "error", err)
		}
	}
	for topic, entry := range a.advertised {
		data, err := frame.EncodeAdvertise(topic, entry.msgType, entry.advID)
		if err != nil {
			a.logger.Error("session: encode readvertise", "topic", topic, "error", err)
			continue
		}
		if err := a.sendFrame(data); err != nil {
			a.logger.Warn("session: readvertise failed", "topic", topic, "error", err)
		}
	}
}
