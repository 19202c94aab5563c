package amqp

import (
	"encoding/json"
	"time"
)

// StoreChangeMessage announces one committed store mutation. It carries
// no entity data: consumers that need the entity read it from the store.
type StoreChangeMessage struct {
	Store      string    `json:"store"`
	Op         string    `json:"op"`
	ID         string    `json:"id,omitempty"`
	Generation uint64    `json:"generation"`
	Count      int       `json:"count"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewStoreChangeMessage creates a change message stamped with at, or with
// the current time when at is zero.
func NewStoreChangeMessage(store, op, id string, generation uint64, count int, at time.Time) *StoreChangeMessage {
	if at.IsZero() {
		at = time.Now()
	}
	return &StoreChangeMessage{
		Store:      store,
		Op:         op,
		ID:         id,
		Generation: generation,
		Count:      count,
		Timestamp:  at,
	}
}

// RoutingKey is the key the message is published under: the store name.
func (m *StoreChangeMessage) RoutingKey() string { return m.Store }

// ToJSON converts the message to JSON bytes
func (m *StoreChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StoreChangeMessageFromJSON creates a message from JSON bytes
func StoreChangeMessageFromJSON(data []byte) (*StoreChangeMessage, error) {
	var msg StoreChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
