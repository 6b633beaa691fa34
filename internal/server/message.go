package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a WebSocket message
type MessageType string

const (
	// Client → Server
	MessageTypeAnalyze MessageType = "analyze"

	// Server → Client
	MessageTypeResult MessageType = "result"
	MessageTypeError  MessageType = "error"
)

// Message represents the base WebSocket message structure. ID is echoed
// back so clients can match results to requests.
type Message struct {
	Type      MessageType     `json:"type"`
	ID        string          `json:"id,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, id string, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		ID:        id,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}
