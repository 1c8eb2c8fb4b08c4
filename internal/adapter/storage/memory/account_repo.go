package memory

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

// Create stages a new account, reserving its account number.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	if err := t.lock(ctx, accountNumberKey(a.AccountNumber)); err != nil {
		return err
	}
	if err := t.lock(ctx, accountKey(a.ID)); err != nil {
		return err
	}

	r.store.mu.RLock()
	_, taken := r.store.numbers[a.AccountNumber]
	r.store.mu.RUnlock()
	if taken {
		return ports.ErrDuplicateAccountNumber
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, staged := range t.accounts {
		if staged.AccountNumber == a.AccountNumber && staged.ID != a.ID {
			return ports.ErrDuplicateAccountNumber
		}
	}
	t.accounts[a.ID] = *a
	return nil
}

// GetByID fetches a committed account by UUID (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.accounts[id]
	if !ok {
		return nil, nil
	}
	a = r.store.withOwner(a, nil)
	return &a, nil
}

// GetByNumber fetches a committed account by its public account number.
func (r *AccountRepo) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.numbers[accountNumber]
	if !ok {
		return nil, nil
	}
	a := r.store.withOwner(r.store.accounts[id], nil)
	return &a, nil
}

// GetByIDForUpdate locks the account for the rest of the transaction and
// returns its latest state, including writes staged by the same transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, accountKey(id)); err != nil {
		return nil, err
	}

	t.mu.Lock()
	staged, ok := t.accounts[id]
	var stagedOwner *domain.User
	if ok {
		if u, found := t.users[staged.OwnerID]; found {
			stagedOwner = &u
		}
	}
	t.mu.Unlock()

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if !ok {
		staged, ok = r.store.accounts[id]
		if !ok {
			return nil, nil
		}
	}
	a := r.store.withOwner(staged, stagedOwner)
	return &a, nil
}

// UpdateBalance stages a new balance. The account must already be locked
// by this transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, held := t.held[accountKey(id)]; !held {
		return fmt.Errorf("update account balance: account %s is not locked by this transaction", id)
	}

	a, ok := t.accounts[id]
	if !ok {
		r.store.mu.RLock()
		a, ok = r.store.accounts[id]
		r.store.mu.RUnlock()
		if !ok {
			return fmt.Errorf("account not found: %s", id)
		}
	}
	a.Balance = balance
	a.UpdatedAt = time.Now().UTC()
	t.accounts[id] = a
	return nil
}
