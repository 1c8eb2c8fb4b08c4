package memory

import (
	"context"
	"sort"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Create stages a new transaction. A referenced insert locks its
// (account, type, reference) key until commit, so a concurrent insert with
// the same reference waits and then sees the committed row, as it would on
// the Postgres unique index.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if txn.Reference != nil {
		key := referenceKey(txn.AccountID, txn.Type, *txn.Reference)
		if err := t.lock(ctx, key); err != nil {
			return err
		}
		if r.referenceTaken(t, key, txn) {
			return ports.ErrDuplicateReference
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.txns[txn.ID] = *txn
	t.created = append(t.created, txn.ID)
	return nil
}

// referenceTaken checks committed rows and rows staged by t.
func (r *TransactionRepo) referenceTaken(t *Tx, key string, txn *domain.Transaction) bool {
	r.store.mu.RLock()
	_, committed := r.store.refs[key]
	r.store.mu.RUnlock()
	if committed {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, staged := range t.txns {
		if staged.Reference != nil && staged.AccountID == txn.AccountID &&
			staged.Type == txn.Type && *staged.Reference == *txn.Reference {
			return true
		}
	}
	return false
}

// GetByReference fetches the committed transaction recorded under a client
// reference.
func (r *TransactionRepo) GetByReference(ctx context.Context, accountID uuid.UUID, txType domain.TransactionType, reference string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.refs[referenceKey(accountID, txType, reference)]
	if !ok {
		return nil, nil
	}
	txn := r.store.txns[id]
	return &txn, nil
}

// GetByID fetches a committed transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.txns[id]
	if !ok {
		return nil, nil
	}
	return &txn, nil
}

// GetByIDForUpdate locks the transaction for the rest of the surrounding
// database transaction. Concurrent resolvers queue here.
func (r *TransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, transactionKey(id)); err != nil {
		return nil, err
	}
	return r.current(t, id), nil
}

// Resolve moves a PENDING transaction to its terminal status. The row must
// be locked by this transaction.
func (r *TransactionRepo) Resolve(ctx context.Context, tx pgx.Tx, res ports.Resolution) (bool, error) {
	t, err := asTx(tx)
	if err != nil {
		return false, err
	}
	if err := t.lock(ctx, transactionKey(res.ID)); err != nil {
		return false, err
	}

	txn := r.current(t, res.ID)
	if txn == nil || !txn.IsPending() {
		return false, nil
	}

	at := res.ResolvedAt
	txn.Status = res.Status
	txn.RejectionReason = res.Reason
	txn.ResolvedBy = res.ResolvedBy
	txn.ResolvedAt = &at

	t.mu.Lock()
	t.txns[res.ID] = *txn
	t.mu.Unlock()
	return true, nil
}

// ListPending returns every PENDING transaction, oldest first.
func (r *TransactionRepo) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []domain.Transaction{}
	for _, id := range r.store.order {
		if txn := r.store.txns[id]; txn.IsPending() {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// List returns a page of matching transactions, newest first.
func (r *TransactionRepo) List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	filter = filter.Normalize()

	r.store.mu.RLock()
	matched := []domain.Transaction{}
	for i := len(r.store.order) - 1; i >= 0; i-- {
		txn := r.store.txns[r.store.order[i]]
		if filter.AccountID != nil && txn.AccountID != *filter.AccountID {
			continue
		}
		if filter.Status != nil && txn.Status != *filter.Status {
			continue
		}
		matched = append(matched, txn)
	}
	r.store.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return []domain.Transaction{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// current returns the transaction as seen by t: its own staged version if
// any, otherwise the committed one.
func (r *TransactionRepo) current(t *Tx, id uuid.UUID) *domain.Transaction {
	t.mu.Lock()
	staged, ok := t.txns[id]
	t.mu.Unlock()
	if ok {
		return &staged
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	txn, ok := r.store.txns[id]
	if !ok {
		return nil
	}
	return &txn
}
