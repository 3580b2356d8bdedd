package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeNotification = "notification"
	MessageTypeError        = "error"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func NewMessage(messageType string, data interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleMessage answers a client frame. The channel is push-only, so anything but ping
// gets an error reply.
func HandleMessage(raw []byte) []byte {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		reply, _ := NewMessage(MessageTypeError, map[string]string{"message": "Invalid message format"})
		return reply
	}

	switch msg.Type {
	case MessageTypePing:
		reply, _ := NewMessage(MessageTypePong, nil)
		return reply
	case MessageTypePong:
		return nil
	}

	reply, _ := NewMessage(MessageTypeError, map[string]string{"message": "Unsupported message type: " + msg.Type})
	return reply
}
