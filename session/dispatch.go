package session

import (
	"encoding/json"

	"github.com/rosbridgego/rosbridge/frame"
)

// onFrame decodes one inbound wire frame and routes it by op. A single
// malformed or unrecognized frame is logged and discarded; it never
// propagates to other subscriptions or tears down the session.
func (a *actor) onFrame(data []byte) {
	decoded, err := frame.Decode(data)
	if err != nil {
		a.logger.Warn("session: discarding unrecognized frame", "error", err)
		return
	}

	switch f := decoded.(type) {
	case frame.PublishFrame:
		a.registry.Publish(f.Topic, f.Msg)

	case frame.ServiceResponseFrame:
		a.dispatchServiceResponse(f)

	case frame.CallServiceFrame:
		a.dispatchInboundCall(f)

	case frame.StatusFrame:
		a.dispatchStatus(f)
	}
}

// dispatchServiceResponse completes (or discards, if no longer pending) an
// in-flight call_service. A response with no matching pending call — a
// stale late reply from before a disconnect, or one answering a call this
// session already cancelled — is a real rosbridge behavior the distilled
// protocol table only implies; it is logged and dropped rather than
// treated as an error.
func (a *actor) dispatchServiceResponse(f frame.ServiceResponseFrame) {
	ch, ok := a.pendingCalls[f.ID]
	if !ok {
		a.logger.Debug("session: service_response with no matching pending call", "id", f.ID, "service", f.Service)
		return
	}
	delete(a.pendingCalls, f.ID)

	if !f.Result {
		ch <- callResult{err: &ServiceFailedError{Message: string(f.Values)}}
		return
	}
	ch <- callResult{values: f.Values}
}

// dispatchInboundCall runs the handler installed for f.Service and queues
// an outbound service_response with the same id. A call for a service this
// session has not advertised gets result=false rather than being dropped,
// since the remote caller is otherwise left hanging forever.
func (a *actor) dispatchInboundCall(f frame.CallServiceFrame) {
	entry, ok := a.serviceServers[f.Service]
	if !ok {
		data, err := frame.EncodeServiceResponse(f.Service, []byte(`"service not advertised"`), f.ID, false)
		if err == nil {
			_ = a.sendFrame(data)
		}
		return
	}

	values, err := entry.handler(f.Args)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		data, encErr := frame.EncodeServiceResponse(f.Service, msg, f.ID, false)
		if encErr == nil {
			_ = a.sendFrame(data)
		}
		a.logger.Debug("session: service handler returned error", "service", f.Service, "error", err)
		return
	}

	data, err := frame.EncodeServiceResponse(f.Service, values, f.ID, true)
	if err != nil {
		a.logger.Error("session: encode service_response", "service", f.Service, "error", err)
		return
	}
	_ = a.sendFrame(data)
}

// dispatchStatus logs every status frame and, per the spec's resolution of
// whether an error-level status targeting a subscription should tear that
// subscription down, only ever logs — it never cancels a subscription or
// advertisement. An error-level status carrying an id that matches a
// pending service call is surfaced as that call's failure.
func (a *actor) dispatchStatus(f frame.StatusFrame) {
	if f.Level == frame.StatusError {
		a.logger.Error("session: status error from bridge", "id", f.ID, "msg", f.Msg)
	} else {
		a.logger.Debug("session: status from bridge", "level", f.Level, "id", f.ID, "msg", f.Msg)
	}

	if f.Level != frame.StatusError || f.ID == "" {
		return
	}
	if ch, ok := a.pendingCalls[f.ID]; ok {
		delete(a.pendingCalls, f.ID)
		ch <- callResult{err: &ServiceFailedError{Message: f.Msg}}
	}
}
