package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	txRepo      ports.TransactionRepository
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	events      ports.EventPublisher
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. events may be nil.
func NewLedgerService(
	txRepo ports.TransactionRepository,
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	events ports.EventPublisher,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		transactor:  transactor,
		events:      events,
		log:         log,
	}
}

// Create records a new PENDING transaction against an existing account.
func (s *LedgerServiceImpl) Create(ctx context.Context, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	if !req.Type.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown transaction type %q", req.Type))
	}
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		AccountID: account.ID,
		Type:      req.Type,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		Status:    domain.TransactionStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateReference) {
			_ = dbTx.Rollback(ctx)
			return s.existingByReference(ctx, account.ID, req)
		}
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	publish(ctx, s.events, s.log, domain.EventTransactionCreated, txn)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("account_id", txn.AccountID.String()).
		Str("type", string(txn.Type)).
		Int64("amount", txn.Amount).
		Msg("transaction recorded")

	return txn, nil
}

// existingByReference returns the row that won a reference race. Nothing is
// published; the winner already announced it.
func (s *LedgerServiceImpl) existingByReference(ctx context.Context, accountID uuid.UUID, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	existing, err := s.txRepo.GetByReference(ctx, accountID, req.Type, *req.Reference)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction by reference: %w", err))
	}
	if existing == nil {
		return nil, apperror.InternalError(fmt.Errorf("reference %q rejected but no row found", *req.Reference))
	}

	s.log.Info().
		Str("tx_id", existing.ID.String()).
		Str("account_id", accountID.String()).
		Str("reference", *req.Reference).
		Msg("duplicate reference, returning existing transaction")
	return existing, nil
}

// Get returns a single transaction.
func (s *LedgerServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}

// ListPending returns the approval queue, oldest first.
func (s *LedgerServiceImpl) ListPending(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListPending(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending: %w", err))
	}
	return txns, nil
}

// ListAll returns one page of transactions, newest first.
func (s *LedgerServiceImpl) ListAll(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, apperror.Validation(fmt.Sprintf("unknown status %q", *filter.Status))
	}

	txns, total, err := s.txRepo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// publish emits a lifecycle event after commit. Failures are logged only;
// the ledger row is the source of truth.
func publish(ctx context.Context, events ports.EventPublisher, log zerolog.Logger, eventType string, txn *domain.Transaction) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, eventType, txn); err != nil {
		log.Warn().Err(err).
			Str("event", eventType).
			Str("tx_id", txn.ID.String()).
			Msg("failed to publish transaction event")
	}
}
