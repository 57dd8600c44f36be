package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the client or monitor instance (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the router address (host:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	HTTP    *HTTPEvent    `cbor:"7,keyasint,omitempty"`  // Descriptor fetches and SOAP posts
	Action  *ActionEvent  `cbor:"8,keyasint,omitempty"`  // Invoked actions
	Monitor *MonitorEvent `cbor:"9,keyasint,omitempty"`  // Call-monitor socket activity
	Error   *ErrorEvent   `cbor:"10,keyasint,omitempty"` // Errors at any layer
}

// HTTPEvent captures one HTTP exchange with the router.
type HTTPEvent struct {
	// URL is the request URL.
	URL string `cbor:"1,keyasint"`

	// Method is the HTTP method (GET or POST).
	Method string `cbor:"2,keyasint"`

	// Status is the HTTP response status code (0 if the request failed
	// before a response was received).
	Status int `cbor:"3,keyasint,omitempty"`

	// BodySize is the response body size in bytes.
	BodySize int `cbor:"4,keyasint,omitempty"`
}

// ActionEvent captures one SOAP action invocation.
type ActionEvent struct {
	// Service is the normalized service name (e.g. "WANIPConn1").
	Service string `cbor:"1,keyasint"`

	// Action is the action name (e.g. "GetStatusInfo").
	Action string `cbor:"2,keyasint"`

	// Arguments is the number of input arguments sent.
	Arguments int `cbor:"3,keyasint,omitempty"`

	// Elapsed is the round-trip time.
	Elapsed time.Duration `cbor:"4,keyasint,omitempty"`
}

// MonitorEvent captures call-monitor socket activity.
type MonitorEvent struct {
	// Line is the reassembled event line (without trailing newline).
	// Empty for connection-level events.
	Line string `cbor:"1,keyasint,omitempty"`

	// Dropped is true when the line was discarded due to a full queue.
	Dropped bool `cbor:"2,keyasint,omitempty"`

	// Attempt is the reconnect attempt number for reconnect events.
	Attempt int `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent captures an error at any layer.
type ErrorEvent struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Code is the UPnP error code, when the device reported one.
	Code int `cbor:"3,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerHTTP is the HTTP transport layer (descriptor and SOAP requests).
	LayerHTTP Layer = 0
	// LayerSchema is the descriptor parsing and registry layer.
	LayerSchema Layer = 1
	// LayerAction is the action invocation layer.
	LayerAction Layer = 2
	// LayerMonitor is the call-monitor socket layer.
	LayerMonitor Layer = 3
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerHTTP:
		return "HTTP"
	case LayerSchema:
		return "SCHEMA"
	case LayerAction:
		return "ACTION"
	case LayerMonitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (request/response/event line).
	CategoryMessage Category = 0
	// CategoryState indicates a state change (connect, reconnect, stop).
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
