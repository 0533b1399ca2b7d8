package websocket

import (
	"encoding/json"
	"time"
)

// Wire operations for outbound {op, args} frames.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opLogin       = "login"
)

// Inbound event names.
const (
	eventSubscribe   = "subscribe"
	eventUnsubscribe = "unsubscribe"
	eventLogin       = "login"
	eventError       = "error"
)

// request is an outbound control frame.
type request struct {
	Op   string        `json:"op"`
	Args []interface{} `json:"args"`
}

// loginArgs carries the signed login credentials.
type loginArgs struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Timestamp  string `json:"timestamp"`
	Sign       string `json:"sign"`
}

// inboundFrame is the union shape of everything the server sends: event
// acknowledgements carry Event (and Code/Msg on failure), data pushes carry
// Arg and Data.
type inboundFrame struct {
	Event string          `json:"event,omitempty"`
	Code  string          `json:"code,omitempty"`
	Msg   string          `json:"msg,omitempty"`
	Arg   *Channel        `json:"arg,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is one routed payload delivered to a subscriber. Data is the raw
// JSON array from the push frame; decoding it is the caller's concern.
type Message struct {
	Channel    Channel
	Data       json.RawMessage
	ReceivedAt time.Time
}
