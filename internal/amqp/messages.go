package amqp

import (
	"encoding/json"
	"time"

	"charitytracker/internal/core"
)

// DonationRecordedMessage announces a new ledger record. It carries only the
// id and creation time; consumers fetch the full record from the store.
type DonationRecordedMessage struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDonationRecordedMessage creates a message for d stamped with the current time.
func NewDonationRecordedMessage(d core.Donation) *DonationRecordedMessage {
	return &DonationRecordedMessage{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DonationRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DonationRecordedMessageFromJSON decodes a message and rejects one without an id.
func DonationRecordedMessageFromJSON(data []byte) (*DonationRecordedMessage, error) {
	var msg DonationRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errMissingID
	}
	return &msg, nil
}
