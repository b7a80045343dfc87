package amqp

import (
	"encoding/json"
	"time"
)

// StateSavedMessage announces that the application document was persisted.
// It carries only metadata; consumers fetch the current document from the
// store so a burst of saves collapses into mirroring the latest state.
type StateSavedMessage struct {
	SavedAt time.Time `json:"saved_at"`
	Bytes   int       `json:"bytes"`
}

// NewStateSavedMessage stamps a message for a save of the given size.
func NewStateSavedMessage(size int) *StateSavedMessage {
	return &StateSavedMessage{
		SavedAt: time.Now().UTC(),
		Bytes:   size,
	}
}

// ToJSON converts the message to JSON bytes
func (m *StateSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StateSavedMessageFromJSON creates a message from JSON bytes
func StateSavedMessageFromJSON(data []byte) (*StateSavedMessage, error) {
	var msg StateSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
