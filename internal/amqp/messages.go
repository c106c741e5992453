package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncAction tells the worker what happened to a transaction.
type SyncAction string

const (
	ActionUpsert SyncAction = "upsert"
	ActionDelete SyncAction = "delete"
)

// TransactionSyncMessage identifies a transaction to mirror. The worker
// re-reads the record, so only identity travels on the wire.
type TransactionSyncMessage struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Action    SyncAction `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewTransactionSyncMessage(id, ownerID string, action SyncAction) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		OwnerID:   ownerID,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON decodes and checks a message body.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.OwnerID == "" {
		return nil, fmt.Errorf("sync message missing id or owner")
	}
	switch msg.Action {
	case ActionUpsert, ActionDelete:
	default:
		return nil, fmt.Errorf("unknown sync action %q", msg.Action)
	}
	return &msg, nil
}
