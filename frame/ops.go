package frame

import (
	"encoding/json"
	"fmt"
)

// AdvertiseFrame is the outbound "advertise" op: declare intent to publish
// on a topic.
type AdvertiseFrame struct {
	Op    Op     `json:"op"`
	Topic string `json:"topic"`
	Type  string `json:"type"`
	ID    string `json:"id"`
}

// EncodeAdvertise builds an outbound advertise frame.
func EncodeAdvertise(topic, msgType, id string) ([]byte, error) {
	return marshal(AdvertiseFrame{Op: OpAdvertise, Topic: topic, Type: msgType, ID: id})
}

// UnadvertiseFrame is the outbound "unadvertise" op.
type UnadvertiseFrame struct {
	Op    Op     `json:"op"`
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

// EncodeUnadvertise builds an outbound unadvertise frame.
func EncodeUnadvertise(topic, id string) ([]byte, error) {
	return marshal(UnadvertiseFrame{Op: OpUnadvertise, Topic: topic, ID: id})
}

// PublishFrame is the "publish" op, used both outbound (application
// publishing) and inbound (bridge delivering a subscribed message). Msg is
// left as raw JSON: the core never interprets payload shape.
type PublishFrame struct {
	Op    Op              `json:"op"`
	Topic string          `json:"topic"`
	Msg   json.RawMessage `json:"msg"`
}

// EncodePublish builds an outbound publish frame carrying payload verbatim.
func EncodePublish(topic string, payload json.RawMessage) ([]byte, error) {
	return marshal(PublishFrame{Op: OpPublish, Topic: topic, Msg: payload})
}

// SubscribeFrame is the outbound "subscribe" op. ThrottleRate,
// QueueLength, FragmentSize and Compression are optional per the protocol;
// Compression is a pass-through opaque string ("", "none", "png") — this
// codec never inflates compressed payloads itself.
type SubscribeFrame struct {
	Op           Op     `json:"op"`
	Topic        string `json:"topic"`
	Type         string `json:"type"`
	ID           string `json:"id"`
	ThrottleRate *int   `json:"throttle_rate,omitempty"`
	QueueLength  *int   `json:"queue_length,omitempty"`
	FragmentSize *int   `json:"fragment_size,omitempty"`
	Compression  string `json:"compression,omitempty"`
}

// SubscribeOptions carries the optional subscribe fields.
type SubscribeOptions struct {
	ThrottleRate *int
	QueueLength  *int
	FragmentSize *int
	Compression  string
}

// EncodeSubscribe builds an outbound subscribe frame.
func EncodeSubscribe(topic, msgType, id string, opts SubscribeOptions) ([]byte, error) {
	return marshal(SubscribeFrame{
		Op:           OpSubscribe,
		Topic:        topic,
		Type:         msgType,
		ID:           id,
		ThrottleRate: opts.ThrottleRate,
		QueueLength:  opts.QueueLength,
		FragmentSize: opts.FragmentSize,
		Compression:  opts.Compression,
	})
}

// UnsubscribeFrame is the outbound "unsubscribe" op.
type UnsubscribeFrame struct {
	Op    Op     `json:"op"`
	Topic string `json:"topic"`
	ID    string `json:"id"`
}

// EncodeUnsubscribe builds an outbound unsubscribe frame.
func EncodeUnsubscribe(topic, id string) ([]byte, error) {
	return marshal(UnsubscribeFrame{Op: OpUnsubscribe, Topic: topic, ID: id})
}

// CallServiceFrame is the "call_service" op, sent outbound by a caller and
// received inbound when the bridge forwards a remote caller's request to a
// service this session has advertised.
type CallServiceFrame struct {
	Op      Op              `json:"op"`
	Service string          `json:"service"`
	Args    json.RawMessage `json:"args,omitempty"`
	ID      string          `json:"id"`
	Type    string          `json:"type,omitempty"`
}

// EncodeCallService builds an outbound call_service frame.
func EncodeCallService(service string, args json.RawMessage, id, svcType string) ([]byte, error) {
	return marshal(CallServiceFrame{Op: OpCallService, Service: service, Args: args, ID: id, Type: svcType})
}

// ServiceResponseFrame is the "service_response" op, received inbound as
// the reply to an outstanding call and sent outbound as this session's
// reply to an inbound call_service.
type ServiceResponseFrame struct {
	Op      Op              `json:"op"`
	Service string          `json:"service"`
	Values  json.RawMessage `json:"values,omitempty"`
	ID      string          `json:"id"`
	Result  bool            `json:"result"`
}

// EncodeServiceResponse builds an outbound service_response frame.
func EncodeServiceResponse(service string, values json.RawMessage, id string, result bool) ([]byte, error) {
	return marshal(ServiceResponseFrame{Op: OpServiceResponse, Service: service, Values: values, ID: id, Result: result})
}

// AdvertiseServiceFrame is the outbound "advertise_service" op.
type AdvertiseServiceFrame struct {
	Op      Op     `json:"op"`
	Service string `json:"service"`
	Type    string `json:"type"`
}

// EncodeAdvertiseService builds an outbound advertise_service frame.
func EncodeAdvertiseService(service, svcType string) ([]byte, error) {
	return marshal(AdvertiseServiceFrame{Op: OpAdvertiseService, Service: service, Type: svcType})
}

// UnadvertiseServiceFrame is the outbound "unadvertise_service" op.
type UnadvertiseServiceFrame struct {
	Op      Op     `json:"op"`
	Service string `json:"service"`
}

// EncodeUnadvertiseService builds an outbound unadvertise_service frame.
func EncodeUnadvertiseService(service string) ([]byte, error) {
	return marshal(UnadvertiseServiceFrame{Op: OpUnadvertiseSvc, Service: service})
}

// StatusFrame is the inbound "status" op: a diagnostic message from the
// bridge, optionally correlated to an outstanding id.
type StatusFrame struct {
	Op    Op          `json:"op"`
	Level StatusLevel `json:"level"`
	ID    string      `json:"id,omitempty"`
	Msg   string      `json:"msg"`
}

// SetLevelFrame is the outbound "set_level" op: request the bridge change
// its status verbosity. Not automatically sent by the session core; a host
// application may send it explicitly.
type SetLevelFrame struct {
	Op    Op          `json:"op"`
	Level StatusLevel `json:"level"`
	ID    string      `json:"id,omitempty"`
}

// EncodeSetLevel builds an outbound set_level frame.
func EncodeSetLevel(level StatusLevel, id string) ([]byte, error) {
	return marshal(SetLevelFrame{Op: OpSetLevel, Level: level, ID: id})
}

// AuthFrame is the outbound "auth" op: legacy ROS1 user authentication
// handshake. Not automatically sent by the session core.
type AuthFrame struct {
	Op     Op     `json:"op"`
	MAC    string `json:"mac,omitempty"`
	Client string `json:"client,omitempty"`
	Dest   string `json:"dest,omitempty"`
	Rand   string `json:"rand,omitempty"`
	T      int64  `json:"t,omitempty"`
	Level  string `json:"level,omitempty"`
	End    int64  `json:"end,omitempty"`
}

// EncodeAuth builds an outbound auth frame.
func EncodeAuth(a AuthFrame) ([]byte, error) {
	a.Op = OpAuth
	return marshal(a)
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frame: encode: %w", err)
	}
	return data, nil
}
