package amqp

import (
	"testing"
	"time"
)

func TestNewTransactionRecordedMessage(t *testing.T) {
	occurred := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)

	msg := NewTransactionRecordedMessage(42, 7, "income", "500000.00", occurred)

	if msg.ID != 42 {
		t.Errorf("ID = %v, want 42", msg.ID)
	}
	if msg.UserID != 7 {
		t.Errorf("UserID = %v, want 7", msg.UserID)
	}
	if msg.Direction != "income" {
		t.Errorf("Direction = %v, want income", msg.Direction)
	}
	if msg.Nominal != "500000.00" {
		t.Errorf("Nominal = %v, want 500000.00", msg.Nominal)
	}
	if !msg.OccurredAt.Equal(occurred) {
		t.Errorf("OccurredAt = %v, want %v", msg.OccurredAt, occurred)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionRecordedMessage_JSON(t *testing.T) {
	msg := &TransactionRecordedMessage{
		ID:         12345,
		UserID:     7,
		Direction:  "outcome",
		Nominal:    "150000.00",
		OccurredAt: time.Date(2025, 10, 5, 15, 30, 0, 0, time.UTC),
		Timestamp:  time.Date(2025, 10, 5, 15, 30, 1, 0, time.UTC),
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionRecordedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("TransactionRecordedMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if parsed.UserID != msg.UserID {
		t.Errorf("Parsed UserID = %v, want %v", parsed.UserID, msg.UserID)
	}
	if parsed.Direction != msg.Direction {
		t.Errorf("Parsed Direction = %v, want %v", parsed.Direction, msg.Direction)
	}
	if parsed.Nominal != msg.Nominal {
		t.Errorf("Parsed Nominal = %v, want %v", parsed.Nominal, msg.Nominal)
	}
	if !parsed.OccurredAt.Equal(msg.OccurredAt) {
		t.Errorf("Parsed OccurredAt = %v, want %v", parsed.OccurredAt, msg.OccurredAt)
	}
}

func TestTransactionRecordedMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"id": "not_a_number", "user_id": 7}`)

	_, err := TransactionRecordedMessageFromJSON(invalidJSON)
	if err == nil {
		t.Error("TransactionRecordedMessageFromJSON() should fail with invalid JSON")
	}
}
