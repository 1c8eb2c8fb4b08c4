package memory

import (
	"context"
	"errors"
	"sync"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrTxDone is returned when a finished transaction is used again.
	ErrTxDone = errors.New("memory: transaction already committed or rolled back")
	// ErrForeignTx is returned when a repository receives a pgx.Tx it did not create.
	ErrForeignTx = errors.New("memory: transaction was not started by this store")
	// ErrNoSQL is returned by the raw SQL methods, which the memory driver does not support.
	ErrNoSQL = errors.New("memory: raw SQL is not supported")
)

// Transactor implements ports.DBTransactor for the memory driver.
type Transactor struct {
	store *Store
}

// NewTransactor creates a Transactor bound to store.
func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

// Begin starts a new memory transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newTx(t.store), nil
}

// Tx is a pgx.Tx whose writes are staged locally and published on Commit.
// Keys locked through the repositories stay locked until Commit or Rollback.
type Tx struct {
	store *Store

	mu       sync.Mutex
	held     map[string]struct{}
	users    map[uuid.UUID]domain.User
	accounts map[uuid.UUID]domain.Account
	txns     map[uuid.UUID]domain.Transaction
	created  []uuid.UUID // new transaction ids in creation order
	done     bool
}

func newTx(store *Store) *Tx {
	return &Tx{
		store:    store,
		held:     make(map[string]struct{}),
		users:    make(map[uuid.UUID]domain.User),
		accounts: make(map[uuid.UUID]domain.Account),
		txns:     make(map[uuid.UUID]domain.Transaction),
	}
}

func asTx(tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, ErrForeignTx
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil, ErrTxDone
	}
	return t, nil
}

// lock acquires key for the lifetime of the transaction. Re-locking a key
// the transaction already holds is a no-op.
func (t *Tx) lock(ctx context.Context, key string) error {
	t.mu.Lock()
	if _, ok := t.held[key]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	if err := t.store.locks.Lock(ctx, key); err != nil {
		return err
	}

	t.mu.Lock()
	t.held[key] = struct{}{}
	t.mu.Unlock()
	return nil
}

// Commit publishes staged writes and releases every held key.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for id, u := range t.users {
		s.users[id] = u
		s.emails[u.Email] = id
	}
	for id, a := range t.accounts {
		a.OwnerName, a.OwnerEmail, a.OwnerMobile = "", "", ""
		s.accounts[id] = a
		s.numbers[a.AccountNumber] = id
	}
	for id, txn := range t.txns {
		s.txns[id] = txn
		if txn.Reference != nil {
			s.refs[referenceKey(txn.AccountID, txn.Type, *txn.Reference)] = id
		}
	}
	s.order = append(s.order, t.created...)
	s.mu.Unlock()

	t.releaseLocked()
	return nil
}

// Rollback discards staged writes and releases every held key.
// Calling it after Commit or a previous Rollback is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.releaseLocked()
	return nil
}

func (t *Tx) releaseLocked() {
	for key := range t.held {
		t.store.locks.Unlock(key)
	}
	t.held = nil
	t.users, t.accounts, t.txns, t.created = nil, nil, nil, nil
}

// Begin returns the same transaction; nested transactions share its scope.
func (t *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, ErrNoSQL
}
func (t *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return errBatch{err: ErrNoSQL}
}
func (t *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, ErrNoSQL
}
func (t *Tx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), ErrNoSQL
}
func (t *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, ErrNoSQL
}
func (t *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return errRow{err: ErrNoSQL}
}
func (t *Tx) Conn() *pgx.Conn { return nil }

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

// errBatch answers every batch call with err.
type errBatch struct{ err error }

func (b errBatch) Exec() (pgconn.CommandTag, error) { return pgconn.NewCommandTag(""), b.err }
func (b errBatch) Query() (pgx.Rows, error)         { return nil, b.err }
func (b errBatch) QueryRow() pgx.Row                { return errRow{err: b.err} }
func (b errBatch) Close() error                     { return b.err }
