package session

import (
	"github.com/rosbridgego/rosbridge/frame"
)

func (a *actor) doSubscribe(c cmdSubscribe) {
	subID := newID(c.topic)
	depth := c.depth
	if depth <= 0 {
		depth = a.cfg.SubscriberQueueDepth
	}

	queue, firstForTopic := a.registry.Subscribe(c.topic, subID, depth)
	a.subMeta[subID] = subMeta{topic: c.topic, msgType: c.msgType, opts: c.opts}

	if firstForTopic {
		data, err := frame.EncodeSubscribe(c.topic, c.msgType, subID, c.opts)
		if err != nil {
			c.reply <- subscribeResult{err: &SerializationError{Err: err}}
			return
		}
		if err := a.sendFrame(data); err != nil && a.state == StateConnected {
			c.reply <- subscribeResult{err: err}
			return
		}
	}

	c.reply <- subscribeResult{subID: subID, queue: queue}
}

func (a *actor) doUnsubscribe(subID string) {
	if _, ok := a.subMeta[subID]; !ok {
		return
	}
	delete(a.subMeta, subID)

	lastForTopic, topic := a.registry.Unsubscribe(subID)
	if lastForTopic {
		data, err := frame.EncodeUnsubscribe(topic, subID)
		if err != nil {
			a.logger.Error("session: encode unsubscribe", "topic", topic, "error", err)
			return
		}
		if err := a.sendFrame(data); err != nil && a.state == StateConnected {
			a.logger.Warn("session: send unsubscribe failed", "topic", topic, "error", err)
		}
	}
}

func (a *actor) doAdvertise(c cmdAdvertise) {
	entry, ok := a.advertised[c.topic]
	if ok {
		entry.refs++
		c.reply <- advertiseResult{advID: entry.advID}
		return
	}

	advID := newID(c.topic)
	entry = &advEntry{advID: advID, msgType: c.msgType, refs: 1}
	a.advertised[c.topic] = entry

	data, err := frame.EncodeAdvertise(c.topic, c.msgType, advID)
	if err != nil {
		delete(a.advertised, c.topic)
		c.reply <- advertiseResult{err: &SerializationError{Err: err}}
		return
	}
	if err := a.sendFrame(data); err != nil && a.state == StateConnected {
		c.reply <- advertiseResult{err: err}
		return
	}
	c.reply <- advertiseResult{advID: advID}
}

// doUnadvertise decrements the advertisement refcount for topic. Per the
// spec's resolution of the publish/unadvertise ordering question, the
// caller (PublisherHandle.Close) is responsible for flushing any
// in-flight Publish before invoking this; by the time this command is
// processed by the single-threaded actor, no later Publish for the same
// handle can already be queued ahead of it since commands from one caller
// are delivered in submission order.
func (a *actor) doUnadvertise(c cmdUnadvertise) {
	defer func() {
		if c.done != nil {
			close(c.done)
		}
	}()

	entry, ok := a.advertised[c.topic]
	if !ok || entry.advID != c.advID {
		return
	}
	entry.refs--
	if entry.refs > 0 {
		return
	}
	delete(a.advertised, c.topic)

	data, err := frame.EncodeUnadvertise(c.topic, c.advID)
	if err != nil {
		a.logger.Error("session: encode unadvertise", "topic", c.topic, "error", err)
		return
	}
	if err := a.sendFrame(data); err != nil && a.state == StateConnected {
		a.logger.Warn("session: send unadvertise failed", "topic", c.topic, "error", err)
	}
}

func (a *actor) doCallService(c cmdCallService) {
	if a.state != StateConnected {
		c.reply <- callResult{err: ErrDisconnected}
		return
	}

	callID := newID(c.service)
	data, err := frame.EncodeCallService(c.service, c.args, callID, c.svcType)
	if err != nil {
		c.reply <- callResult{err: &SerializationError{Err: err}}
		return
	}

	replyCh := make(chan callResult, 1)
	if err := a.sendFrame(data); err != nil {
		c.reply <- callResult{err: err}
		return
	}
	a.pendingCalls[callID] = replyCh

	go func() {
		select {
		case res := <-replyCh:
			c.reply <- res
		case <-c.cancel:
			select {
			case a.cmds <- cmdCancelCall{callID: callID}:
			default:
			}
			c.reply <- callResult{err: ErrCancelled}
		}
	}()
}

func (a *actor) doAdvertiseService(c cmdAdvertiseService) error {
	if _, ok := a.serviceServers[c.service]; ok {
		return ErrServiceAlreadyAdvertised
	}
	advID := newID(c.service)
	a.serviceServers[c.service] = &svcEntry{advID: advID, svcType: c.svcType, handler: c.handler}

	data, err := frame.EncodeAdvertiseService(c.service, c.svcType)
	if err != nil {
		delete(a.serviceServers, c.service)
		return &SerializationError{Err: err}
	}
	if err := a.sendFrame(data); err != nil && a.state == StateConnected {
		return err
	}
	return nil
}

func (a *actor) doUnadvertiseService(service string) {
	if _, ok := a.serviceServers[service]; !ok {
		return
	}
	delete(a.serviceServers, service)

	data, err := frame.EncodeUnadvertiseService(service)
	if err != nil {
		a.logger.Error("session: encode unadvertise_service", "service", service, "error", err)
		return
	}
	if err := a.sendFrame(data); err != nil && a.state == StateConnected {
		a.logger.Warn("session: send unadvertise_service failed", "service", service, "error", err)
	}
}

// doShutdown best-effort tears down every live registration while the
// socket is still usable, then transitions to ShuttingDown, fails every
// pending call, and closes the socket.
func (a *actor) doShutdown() {
	for subID, meta := range a.subMeta {
		if _, topic := a.registry.Unsubscribe(subID); topic != "" {
			if data, err := frame.EncodeUnsubscribe(meta.topic, subID); err == nil {
				_ = a.sendFrame(data)
			}
		}
	}
	a.subMeta = make(map[string]subMeta)

	for topic, entry := range a.advertised {
		if data, err := frame.EncodeUnadvertise(topic, entry.advID); err == nil {
			_ = a.sendFrame(data)
		}
	}
	a.advertised = make(map[string]*advEntry)

	a.state = StateShuttingDown

	for callID, ch := range a.pendingCalls {
		ch <- callResult{err: ErrDisconnected}
		delete(a.pendingCalls, callID)
	}

	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
	if a.cancel != nil {
		a.cancel()
	}
}
