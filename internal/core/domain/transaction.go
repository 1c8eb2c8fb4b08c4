package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the direction of a money movement.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusSuccess, TransactionStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that admit no further transition.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed
}

// CanTransition reports whether the state machine allows from -> to.
// Only PENDING -> SUCCESS and PENDING -> FAILED exist.
func CanTransition(from, to TransactionStatus) bool {
	return from == TransactionStatusPending && to.IsTerminal()
}

// Transaction is one money-movement event in the ledger. Rows are never deleted;
// Status moves out of PENDING exactly once.
type Transaction struct {
	ID              uuid.UUID         `json:"id"`
	AccountID       uuid.UUID         `json:"account_id"`
	Type            TransactionType   `json:"type"`
	Amount          int64             `json:"amount"` // Minor units, always > 0
	Method          string            `json:"method"`
	Reference       *string           `json:"reference,omitempty"`
	Status          TransactionStatus `json:"status"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	ResolvedBy      *uuid.UUID        `json:"resolved_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
}

// IsPending returns true while the transaction awaits a decision.
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// TransactionFilter narrows ListAll results. Zero values mean "any".
type TransactionFilter struct {
	AccountID *uuid.UUID
	Status    *TransactionStatus
	Page      int
	PageSize  int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging to sane bounds.
func (f TransactionFilter) Normalize() TransactionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset returns the row offset for the current page.
func (f TransactionFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
