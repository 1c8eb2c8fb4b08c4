package domain

import "time"

// Transaction lifecycle event types.
const (
	EventTransactionCreated  = "transaction.created"
	EventTransactionApproved = "transaction.approved"
	EventTransactionRejected = "transaction.rejected"
)

// Event is the envelope published to the transaction event stream.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}
