package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of a push-channel message.
type MessageType string

const (
	// Sensor → kiosk messages
	TypeFrame  MessageType = "frame"  // Gesture frame snapshot
	TypeStatus MessageType = "status" // Sensing service status change

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all push-channel messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseMessage parses a JSON message from bytes.
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// Bytes returns the JSON-encoded message.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// GetFrame unmarshals the payload of a TypeFrame message.
func (m *Message) GetFrame() (*GestureFrame, error) {
	if m.Type != TypeFrame {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeFrame)
	}
	var frame GestureFrame
	if err := json.Unmarshal(m.Data, &frame); err != nil {
		return nil, fmt.Errorf("failed to decode frame data: %w", err)
	}
	return &frame, nil
}

// StatusData reports a sensing-service status change on the push channel.
type StatusData struct {
	Signal  bool   `json:"signal"`
	Message string `json:"message,omitempty"`
}

// GetStatus unmarshals the payload of a TypeStatus message.
func (m *Message) GetStatus() (*StatusData, error) {
	if m.Type != TypeStatus {
		return nil, fmt.Errorf("message type is %s, not %s", m.Type, TypeStatus)
	}
	var status StatusData
	if err := json.Unmarshal(m.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status data: %w", err)
	}
	return &status, nil
}
