package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account holds the single authoritative balance for a user's wallet.
// Balance is in minor units (two implied decimals) and is only ever changed
// through the account store's credit/debit operations.
type Account struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OwnerName     string    `json:"owner_name"`
	OwnerEmail    string    `json:"owner_email"`
	OwnerMobile   string    `json:"owner_mobile"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the account belongs to the given user.
func (a *Account) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// Public strips everything but the identity fields a sender needs to confirm a recipient.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		AccountID: a.ID,
		Name:      a.OwnerName,
		Email:     a.OwnerEmail,
	}
}

// PublicAccount is the non-sensitive projection returned by account lookup.
// It deliberately has no balance field.
type PublicAccount struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}
