package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotChangedMessage announces that the snapshot of a month was recorded.
// Receivers reload the data they need; the message carries no amounts.
type SnapshotChangedMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Version   int64     `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotChangedMessage creates a message stamped with the current time.
func NewSnapshotChangedMessage(year, month int, version int64) *SnapshotChangedMessage {
	return &SnapshotChangedMessage{
		Year:      year,
		Month:     month,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotChangedMessageFromJSON parses a message body.
func SnapshotChangedMessageFromJSON(data []byte) (*SnapshotChangedMessage, error) {
	var msg SnapshotChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
