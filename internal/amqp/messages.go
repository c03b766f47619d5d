package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage announces a newly persisted transaction. It
// carries only the ID; consumers fetch the full record from the store.
type TransactionCreatedMessage struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id string) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
