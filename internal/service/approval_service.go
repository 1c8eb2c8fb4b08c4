package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ApprovalServiceImpl implements ports.ApprovalService.
//
// Each call runs in one database transaction that first locks the
// transaction row, then (for approvals) the account row. Concurrent
// resolvers of the same transaction queue on the first lock and observe
// the winner's terminal status once it commits. The lock order is always
// transaction then account, so approvals cannot deadlock each other.
type ApprovalServiceImpl struct {
	txRepo     ports.TransactionRepository
	accounts   ports.AccountStore
	transactor ports.DBTransactor
	events     ports.EventPublisher
	log        zerolog.Logger
	now        func() time.Time
}

// NewApprovalService creates a new ApprovalServiceImpl. events may be nil.
func NewApprovalService(
	txRepo ports.TransactionRepository,
	accounts ports.AccountStore,
	transactor ports.DBTransactor,
	events ports.EventPublisher,
	log zerolog.Logger,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		txRepo:     txRepo,
		accounts:   accounts,
		transactor: transactor,
		events:     events,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Approve applies a PENDING transaction to its account and marks it SUCCESS.
// If the balance mutation fails the transaction stays PENDING.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, caller domain.Caller, id uuid.UUID) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.lockPending(ctx, dbTx, id)
	if err != nil {
		return nil, err
	}

	var balance int64
	switch txn.Type {
	case domain.TransactionTypeCredit:
		balance, err = s.accounts.CreditInTx(ctx, dbTx, txn.AccountID, txn.Amount)
	case domain.TransactionTypeDebit:
		balance, err = s.accounts.DebitInTx(ctx, dbTx, txn.AccountID, txn.Amount)
	default:
		err = apperror.InternalError(fmt.Errorf("transaction %s has unknown type %q", txn.ID, txn.Type))
	}
	if err != nil {
		s.log.Warn().Err(err).
			Str("tx_id", txn.ID.String()).
			Str("type", string(txn.Type)).
			Msg("approval rolled back, transaction stays pending")
		return nil, err
	}

	resolved, err := s.resolve(ctx, dbTx, txn, caller, domain.TransactionStatusSuccess, nil)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.log, domain.EventTransactionApproved, resolved)

	s.log.Info().
		Str("tx_id", resolved.ID.String()).
		Str("account_id", resolved.AccountID.String()).
		Str("type", string(resolved.Type)).
		Int64("amount", resolved.Amount).
		Int64("balance", balance).
		Bool("system", caller.IsSystem()).
		Msg("transaction approved")

	return resolved, nil
}

// Reject marks a PENDING transaction FAILED with a reason. Balances are untouched.
func (s *ApprovalServiceImpl) Reject(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.lockPending(ctx, dbTx, id)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.ErrMissingReason()
	}

	resolved, err := s.resolve(ctx, dbTx, txn, caller, domain.TransactionStatusFailed, &reason)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.log, domain.EventTransactionRejected, resolved)

	s.log.Info().
		Str("tx_id", resolved.ID.String()).
		Str("account_id", resolved.AccountID.String()).
		Str("reason", reason).
		Msg("transaction rejected")

	return resolved, nil
}

// lockPending locks the transaction row and checks it can still be resolved.
func (s *ApprovalServiceImpl) lockPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	txn, err := s.txRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	if !txn.IsPending() {
		return nil, apperror.ErrAlreadyResolved()
	}
	return txn, nil
}

// resolve writes the terminal status and commits.
func (s *ApprovalServiceImpl) resolve(
	ctx context.Context,
	tx pgx.Tx,
	txn *domain.Transaction,
	caller domain.Caller,
	status domain.TransactionStatus,
	reason *string,
) (*domain.Transaction, error) {
	if !domain.CanTransition(txn.Status, status) {
		return nil, apperror.ErrAlreadyResolved()
	}

	at := s.now()
	ok, err := s.txRepo.Resolve(ctx, tx, ports.Resolution{
		ID:         txn.ID,
		Status:     status,
		Reason:     reason,
		ResolvedBy: caller.ActorID(),
		ResolvedAt: at,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve transaction: %w", err))
	}
	if !ok {
		return nil, apperror.ErrAlreadyResolved()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	resolved := *txn
	resolved.Status = status
	resolved.RejectionReason = reason
	resolved.ResolvedBy = caller.ActorID()
	resolved.ResolvedAt = &at
	return &resolved, nil
}
