// Package memory is a process-local storage driver. It mirrors the locking
// behaviour of the PostgreSQL adapter (row locks held until commit) with
// per-key mutexes, and stages writes until Commit so that readers never see
// uncommitted state.
package memory

import (
	"context"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// Store holds all committed state for the memory driver.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	emails   map[string]uuid.UUID
	accounts map[uuid.UUID]domain.Account
	numbers  map[string]uuid.UUID
	txns     map[uuid.UUID]domain.Transaction
	order    []uuid.UUID          // transaction insertion order
	refs     map[string]uuid.UUID // referenceKey -> transaction id
	audits   []domain.AuditLog

	locks *keyedLocker
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		emails:   make(map[string]uuid.UUID),
		accounts: make(map[uuid.UUID]domain.Account),
		numbers:  make(map[string]uuid.UUID),
		txns:     make(map[uuid.UUID]domain.Transaction),
		refs:     make(map[string]uuid.UUID),
		locks:    newKeyedLocker(),
	}
}

// Lock key namespaces.
func userEmailKey(email string) string { return "user:email:" + email }
func accountKey(id uuid.UUID) string { return "account:" + id.String() }
func accountNumberKey(number string) string { return "account:number:" + number }
func transactionKey(id uuid.UUID) string { return "transaction:" + id.String() }
func referenceKey(accountID uuid.UUID, txType domain.TransactionType, reference string) string {
	return "transaction:ref:" + domain.BuildRequestKey(accountID, txType, reference)
}

// withOwner fills the owner identity fields the way the SQL join does.
// staged is consulted when the owner has not been committed yet.
// Caller must hold s.mu.
func (s *Store) withOwner(a domain.Account, staged *domain.User) domain.Account {
	u, ok := s.users[a.OwnerID]
	if !ok && staged != nil {
		u, ok = *staged, true
	}
	if ok {
		a.OwnerName = u.Name
		a.OwnerEmail = u.Email
		a.OwnerMobile = u.Mobile
	}
	return a
}

// HealthCheck implements ports.HealthChecker for the memory driver.
type HealthCheck struct{}

// NewHealthCheck creates a memory health checker.
func NewHealthCheck() *HealthCheck {
	return &HealthCheck{}
}

// Ping always succeeds.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "memory"
}
