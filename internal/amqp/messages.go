package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindUpsert = "upsert"
	KindDelete = "delete"
)

// TransactionSyncMessage asks the worker to push one locally saved
// transaction to the remote store. It carries only the local id; the worker
// fetches the full row from the database.
type TransactionSyncMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		Kind:      KindUpsert,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// TransactionDeleteMessage asks the worker to remove a transaction from the
// remote store. The local row is already gone when this is published, so the
// message carries the data needed to find the remote copy.
type TransactionDeleteMessage struct {
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionDeleteMessage(id int64, name string, amountCents int64, date, entryType string) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{
		Kind:        KindDelete,
		ID:          id,
		Name:        name,
		AmountCents: amountCents,
		Date:        date,
		Type:        entryType,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionDeleteMessageFromJSON(data []byte) (*TransactionDeleteMessage, error) {
	var msg TransactionDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
