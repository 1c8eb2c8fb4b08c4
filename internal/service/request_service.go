package service

import (
	"context"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const requestKeyTTL = 24 * time.Hour

// RequestServiceImpl implements ports.RequestService: the client-facing
// path that turns an owner's deposit or withdrawal into a ledger entry.
type RequestServiceImpl struct {
	lookup            ports.AccountLookupService
	ledger            ports.LedgerService
	approvals         ports.ApprovalService
	requestKeys       ports.RequestKeyStore
	autoApproveDebits bool
	log               zerolog.Logger
}

// NewRequestService creates a new RequestServiceImpl. requestKeys may be nil,
// in which case client references are recorded but not deduplicated.
func NewRequestService(
	lookup ports.AccountLookupService,
	ledger ports.LedgerService,
	approvals ports.ApprovalService,
	requestKeys ports.RequestKeyStore,
	autoApproveDebits bool,
	log zerolog.Logger,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		lookup:            lookup,
		ledger:            ledger,
		approvals:         approvals,
		requestKeys:       requestKeys,
		autoApproveDebits: autoApproveDebits,
		log:               log,
	}
}

// RequestDeposit records an add-money request awaiting admin approval.
func (s *RequestServiceImpl) RequestDeposit(ctx context.Context, caller domain.Caller, req ports.MoneyRequest) (*domain.Transaction, error) {
	return s.request(ctx, caller, req, domain.TransactionTypeCredit)
}

// RequestWithdrawal records a debit request. With auto-approval enabled it
// is resolved immediately by the system caller.
func (s *RequestServiceImpl) RequestWithdrawal(ctx context.Context, caller domain.Caller, req ports.MoneyRequest) (*domain.Transaction, error) {
	txn, err := s.request(ctx, caller, req, domain.TransactionTypeDebit)
	if err != nil {
		return nil, err
	}
	if !s.autoApproveDebits || !txn.IsPending() {
		return txn, nil
	}

	approved, err := s.approvals.Approve(ctx, domain.SystemCaller, txn.ID)
	if err != nil {
		// The request itself is recorded; it stays in the admin queue.
		s.log.Warn().Err(err).Str("tx_id", txn.ID.String()).Msg("auto-approval of withdrawal failed")
		return txn, nil
	}
	return approved, nil
}

// History returns the caller's own transactions for accountNumber, newest first.
func (s *RequestServiceImpl) History(ctx context.Context, caller domain.Caller, accountNumber string, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	account, err := s.lookup.VerifyOwnership(ctx, caller, accountNumber)
	if err != nil {
		return nil, 0, err
	}
	filter.AccountID = &account.ID
	return s.ledger.ListAll(ctx, filter)
}

// Balance returns the caller's own account, including its balance.
func (s *RequestServiceImpl) Balance(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error) {
	return s.lookup.VerifyOwnership(ctx, caller, accountNumber)
}

func (s *RequestServiceImpl) request(ctx context.Context, caller domain.Caller, req ports.MoneyRequest, txType domain.TransactionType) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.lookup.VerifyOwnership(ctx, caller, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	var key string
	if req.Reference != "" && s.requestKeys != nil {
		key = domain.BuildRequestKey(account.ID, txType, req.Reference)
		if prior := s.replay(ctx, key); prior != nil {
			return prior, nil
		}
	}

	create := ports.CreateTransactionRequest{
		AccountID: account.ID,
		Type:      txType,
		Amount:    req.Amount,
		Method:    req.Method,
	}
	if req.Reference != "" {
		ref := req.Reference
		create.Reference = &ref
	}

	txn, err := s.ledger.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.requestKeys.Remember(ctx, key, txn.ID, requestKeyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to cache request key")
		}
	}
	return txn, nil
}

// replay returns the transaction previously created under key, if any.
// Store errors degrade to creating a new request.
func (s *RequestServiceImpl) replay(ctx context.Context, key string) *domain.Transaction {
	id, found, err := s.requestKeys.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("request key lookup failed")
		return nil
	}
	if !found {
		return nil
	}

	txn, err := s.ledger.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(fmt.Errorf("load replayed transaction: %w", err)).Str("key", key).Msg("request key points at missing transaction")
		return nil
	}
	return txn
}
