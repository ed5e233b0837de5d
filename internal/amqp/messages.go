package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage announces that a transaction was written to
// the ledger. It carries identifiers only; consumers that need the full
// row fetch it from the database.
type TransactionRecordedMessage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Direction  string    `json:"direction"`
	Nominal    string    `json:"nominal"`
	OccurredAt time.Time `json:"occurred_at"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(id, userID int64, direction, nominal string, occurredAt time.Time) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:         id,
		UserID:     userID,
		Direction:  direction,
		Nominal:    nominal,
		OccurredAt: occurredAt,
		Timestamp:  time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
