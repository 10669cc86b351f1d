// Package events contains the message contracts of the live dashboard
// WebSocket session.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Client to server
	MessageTypeRender MessageType = "render"
	MessageTypePing   MessageType = "ping"

	// Server to client
	MessageTypeConnected       MessageType = "connected"
	MessageTypeView            MessageType = "view"
	MessageTypeDatasetReloaded MessageType = "dataset_reloaded"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server message with its payload
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// RenderState is the dashboard selection a client asks to render
type RenderState struct {
	Position string  `json:"position"`
	Test     string  `json:"test"`
	Round    int     `json:"round"`
	Value    float64 `json:"value"`
}

// ClientMessage is what a client sends over the session. ID is echoed back
// on the reply so clients can match responses to requests.
type ClientMessage struct {
	ID    string       `json:"id,omitempty"`
	Type  MessageType  `json:"type"`
	State *RenderState `json:"state,omitempty"`
}

// ErrorData describes a failed request on the session
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// Error codes sent in ErrorData
const (
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"
	ErrorCodeInvalidSelection = "INVALID_SELECTION"
	ErrorCodeBadMessage       = "BAD_MESSAGE"
	ErrorCodeUnavailable      = "DATASET_UNAVAILABLE"
	ErrorCodeInternal         = "INTERNAL_ERROR"
)

// DatasetReloadedData announces that a new dataset is being served
type DatasetReloadedData struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Drafted     int       `json:"drafted"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// ConnectedData greets a new session
type ConnectedData struct {
	ClientID   string `json:"client_id"`
	APIVersion string `json:"api_version"`
}

// NewMessage builds a timestamped server message
func NewMessage(t MessageType, id string, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			ID:        id,
			Type:      t,
			Timestamp: time.Now().UTC(),
		},
		Data: data,
	}
}
