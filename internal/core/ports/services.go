package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// Caller converts the claims into the identity passed to core operations.
func (c TokenClaims) Caller() domain.Caller {
	return domain.Caller{UserID: c.UserID, Role: c.Role}
}

// RequestKeyStore remembers the transaction created for a client request key.
type RequestKeyStore interface {
	// Lookup reports the transaction recorded under key, if any.
	Lookup(ctx context.Context, key string) (uuid.UUID, bool, error)
	// Remember records txID under key unless the key is already taken.
	Remember(ctx context.Context, key string, txID uuid.UUID, ttl time.Duration) error
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// LookupCache caches public account projections by account number.
type LookupCache interface {
	Get(ctx context.Context, accountNumber string) (*domain.PublicAccount, error) // nil on miss
	Set(ctx context.Context, accountNumber string, account *domain.PublicAccount) error
}

// EventPublisher emits transaction lifecycle events. Delivery is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// AuditService records security-relevant actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// AccountStore owns every balance mutation. The *InTx variants join a
// caller-owned database transaction; the others run in their own.
type AccountStore interface {
	Credit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
	Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error)
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error)
	CreditInTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (int64, error)
	DebitInTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (int64, error)
	Open(ctx context.Context, tx pgx.Tx, owner *domain.User) (*domain.Account, error)
}

// LedgerService records and queries transactions.
type LedgerService interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListPending(ctx context.Context) ([]domain.Transaction, error)
	ListAll(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
}

// CreateTransactionRequest holds validated input for a new PENDING transaction.
type CreateTransactionRequest struct {
	AccountID uuid.UUID
	Type      domain.TransactionType
	Amount    int64
	Method    string
	Reference *string
}

// ApprovalService resolves pending transactions.
type ApprovalService interface {
	Approve(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Transaction, error)
	Reject(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (*domain.Transaction, error)
}

// AccountLookupService resolves account numbers for senders and owners.
type AccountLookupService interface {
	LookupByAccountNumber(ctx context.Context, accountNumber string) (*domain.PublicAccount, error)
	VerifyOwnership(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error)
}

// RequestService is the client-facing entry point for money requests.
type RequestService interface {
	RequestDeposit(ctx context.Context, caller domain.Caller, req MoneyRequest) (*domain.Transaction, error)
	RequestWithdrawal(ctx context.Context, caller domain.Caller, req MoneyRequest) (*domain.Transaction, error)
	History(ctx context.Context, caller domain.Caller, accountNumber string, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	Balance(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error)
}

// MoneyRequest holds validated input for a deposit or withdrawal request.
type MoneyRequest struct {
	AccountNumber string
	Amount        int64
	Method        string
	Reference     string // optional client idempotency reference
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, email string, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

// RegisterResponse holds the registration result.
type RegisterResponse struct {
	UserID        uuid.UUID
	AccountID     uuid.UUID
	AccountNumber string
	Role          domain.Role
}
