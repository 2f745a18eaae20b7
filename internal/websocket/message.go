package websocket

import (
	"encoding/json"
	"time"
)

// Message types for WebSocket communication
const (
	MessageTypeStatus            = "status"
	MessageTypeBrightnessChanged = "brightness_changed"
	MessageTypeDisplaysUpdated   = "displays_updated"
	MessageTypeSupportTest       = "support_test"
	MessageTypeConnection        = "connection"
	MessageTypeError             = "error"

	// Inbound command types from clients
	CommandSetBrightness   = "set_brightness"
	CommandSlideBrightness = "slide_brightness"
	CommandSelectDisplay   = "select_display"
	CommandRefreshDisplays = "refresh_displays"
	CommandTestSupport     = "test_support"
)

// Message represents a WebSocket message
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m Message) ToJSON() []byte {
	m.Timestamp = time.Now().UTC()
	data, _ := json.Marshal(m)
	return data
}

// StatusMessage pushes a full panel snapshot to clients.
type StatusMessage struct {
	Payload interface{} `json:"payload"`
}

// ToMessage converts StatusMessage to generic Message
func (s StatusMessage) ToMessage() Message {
	return Message{
		Type: MessageTypeStatus,
		Data: map[string]interface{}{
			"status": s.Payload,
		},
	}
}

// BrightnessChangedMessage announces an applied brightness level.
type BrightnessChangedMessage struct {
	DisplayID string `json:"display_id"`
	Level     int    `json:"level"`
	Source    string `json:"source"`
}

// ToMessage converts BrightnessChangedMessage to generic Message
func (b BrightnessChangedMessage) ToMessage() Message {
	return Message{
		Type: MessageTypeBrightnessChanged,
		Data: map[string]interface{}{
			"display_id": b.DisplayID,
			"level":      b.Level,
			"source":     b.Source,
		},
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
