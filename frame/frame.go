// Package frame encodes and decodes the rosbridge JSON operation envelope
// family: one JSON object per WebSocket text frame, discriminated by an
// "op" field.
package frame

import (
	"encoding/json"
	"fmt"
)

// Op names the rosbridge protocol operations this codec understands.
type Op string

const (
	OpAdvertise        Op = "advertise"
	OpUnadvertise      Op = "unadvertise"
	OpPublish          Op = "publish"
	OpSubscribe        Op = "subscribe"
	OpUnsubscribe      Op = "unsubscribe"
	OpCallService      Op = "call_service"
	OpServiceResponse  Op = "service_response"
	OpAdvertiseService Op = "advertise_service"
	OpUnadvertiseSvc   Op = "unadvertise_service"
	OpStatus           Op = "status"
	OpSetLevel         Op = "set_level"
	OpAuth             Op = "auth"
)

// StatusLevel is the verbosity level carried by an inbound "status" op.
type StatusLevel string

const (
	StatusInfo  StatusLevel = "info"
	StatusWarn  StatusLevel = "warning"
	StatusError StatusLevel = "error"
	StatusNone  StatusLevel = "none"
)

// UnknownOpError is returned by Decode when a frame's "op" field is not one
// this codec recognizes. The caller should log it and continue processing
// subsequent frames; a single bad frame must not tear down the session.
type UnknownOpError struct {
	Op string
}

func (e *UnknownOpError) Error() string {
	return fmt.Sprintf("frame: unknown op %q", e.Op)
}

// Decode parses a single rosbridge JSON frame and returns the concrete
// envelope value for its op. Only the ops the bridge sends inbound are
// decoded; the returned value is a PublishFrame, ServiceResponseFrame,
// CallServiceFrame or StatusFrame (see ops.go). Any other op, including
// the outbound-only ones, returns *UnknownOpError.
func Decode(data []byte) (any, error) {
	var raw struct {
		Op string `json:"op"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("frame: decode envelope: %w", err)
	}

	switch Op(raw.Op) {
	case OpPublish:
		var v PublishFrame
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("frame: decode publish: %w", err)
		}
		return v, nil
	case OpServiceResponse:
		var v ServiceResponseFrame
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("frame: decode service_response: %w", err)
		}
		return v, nil
	case OpCallService:
		var v CallServiceFrame
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("frame: decode call_service: %w", err)
		}
		return v, nil
	case OpStatus:
		var v StatusFrame
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("frame: decode status: %w", err)
		}
		return v, nil
	default:
		return nil, &UnknownOpError{Op: raw.Op}
	}
}
