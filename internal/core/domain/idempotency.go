package domain

import "github.com/google/uuid"

// BuildRequestKey constructs the idempotency key for a client money request.
// Format: "account_id:kind:reference", the same scope as the unique
// reference index on transactions.
func BuildRequestKey(accountID uuid.UUID, txType TransactionType, reference string) string {
	return accountID.String() + ":" + string(txType) + ":" + reference
}
