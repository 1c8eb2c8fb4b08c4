package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateAccountNumber is returned by AccountRepository.Create when the
// account number is already taken.
var ErrDuplicateAccountNumber = errors.New("account number already taken")

// ErrDuplicateReference is returned by TransactionRepository.Create when the
// account already has a transaction of the same type under that reference.
var ErrDuplicateReference = errors.New("transaction reference already used")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AccountRepository defines persistence operations for accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balance int64) error
}

// TransactionRepository defines persistence operations for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// GetByReference returns the committed row recorded under (accountID,
	// txType, reference), or nil.
	GetByReference(ctx context.Context, accountID uuid.UUID, txType domain.TransactionType, reference string) (*domain.Transaction, error)
	// Resolve moves a PENDING row to a terminal status. It returns false when
	// the row was no longer PENDING, leaving it untouched.
	Resolve(ctx context.Context, tx pgx.Tx, res Resolution) (bool, error)
	// ListPending returns PENDING rows oldest first.
	ListPending(ctx context.Context) ([]domain.Transaction, error)
	// List returns a page of rows newest first plus the total match count.
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
}

// Resolution carries the terminal state written by TransactionRepository.Resolve.
type Resolution struct {
	ID         uuid.UUID
	Status     domain.TransactionStatus
	Reason     *string
	ResolvedBy *uuid.UUID
	ResolvedAt time.Time
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
