package session

import (
	"encoding/json"

	"github.com/rosbridgego/rosbridge/frame"
	"github.com/rosbridgego/rosbridge/internal/fanout"
)

// command is the sealed set of requests the actor goroutine accepts on its
// command channel. Every application-facing Session method is a thin,
// thread-safe wrapper that builds one of these, sends it, and waits on its
// reply channel — the actor itself is the only thing that ever touches the
// registries.
type command interface{ isCommand() }

type cmdSubscribe struct {
	topic, msgType string
	opts           frame.SubscribeOptions
	depth          int
	reply          chan subscribeResult
}

func (cmdSubscribe) isCommand() {}

type subscribeResult struct {
	subID string
	queue *fanout.Queue
	err   error
}

type cmdUnsubscribe struct {
	subID string
}

func (cmdUnsubscribe) isCommand() {}

type cmdAdvertise struct {
	topic, msgType string
	reply          chan advertiseResult
}

func (cmdAdvertise) isCommand() {}

type advertiseResult struct {
	advID string
	err   error
}

type cmdUnadvertise struct {
	topic, advID string
	done         chan struct{}
}

func (cmdUnadvertise) isCommand() {}

type cmdPublish struct {
	topic   string
	payload json.RawMessage
	reply   chan error
}

func (cmdPublish) isCommand() {}

type cmdCallService struct {
	service string
	args    json.RawMessage
	svcType string
	reply   chan callResult
	cancel  <-chan struct{} // closed when the caller's context is done
}

func (cmdCallService) isCommand() {}

type callResult struct {
	values json.RawMessage
	err    error
}

// cmdCancelCall removes an in-flight call_service registration without
// waiting for a reply; used when the caller's context is cancelled or its
// deadline elapses.
type cmdCancelCall struct {
	callID string
}

func (cmdCancelCall) isCommand() {}

// ServiceHandler answers an inbound call_service frame. A non-nil error
// produces an outbound service_response with result=false and the error's
// message as the response value.
type ServiceHandler func(request json.RawMessage) (json.RawMessage, error)

type cmdAdvertiseService struct {
	service, svcType string
	handler          ServiceHandler
	reply            chan error
}

func (cmdAdvertiseService) isCommand() {}

type cmdUnadvertiseService struct {
	service string
}

func (cmdUnadvertiseService) isCommand() {}

type cmdShutdown struct {
	done chan struct{}
}

func (cmdShutdown) isCommand() {}
