package service

import (
	"context"
	"fmt"
	"strings"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// LookupServiceImpl implements ports.AccountLookupService.
type LookupServiceImpl struct {
	accountRepo ports.AccountRepository
	cache       ports.LookupCache
	log         zerolog.Logger
}

// NewLookupService creates a new LookupServiceImpl. cache may be nil.
func NewLookupService(accountRepo ports.AccountRepository, cache ports.LookupCache, log zerolog.Logger) *LookupServiceImpl {
	return &LookupServiceImpl{
		accountRepo: accountRepo,
		cache:       cache,
		log:         log,
	}
}

// LookupByAccountNumber returns the public identity of an account so a
// sender can confirm a recipient. The balance is never part of the result.
func (s *LookupServiceImpl) LookupByAccountNumber(ctx context.Context, accountNumber string) (*domain.PublicAccount, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, apperror.ErrAccountNotFound()
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, accountNumber)
		if err != nil {
			s.log.Warn().Err(err).Str("account_number", accountNumber).Msg("lookup cache read failed, falling through to store")
		}
		if cached != nil {
			return cached, nil
		}
	}

	account, err := s.findByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	pub := account.Public()
	if s.cache != nil {
		if err := s.cache.Set(ctx, accountNumber, &pub); err != nil {
			s.log.Warn().Err(err).Str("account_number", accountNumber).Msg("lookup cache write failed")
		}
	}
	return &pub, nil
}

// VerifyOwnership returns the full account only if caller owns it.
func (s *LookupServiceImpl) VerifyOwnership(ctx context.Context, caller domain.Caller, accountNumber string) (*domain.Account, error) {
	account, err := s.findByNumber(ctx, strings.TrimSpace(accountNumber))
	if err != nil {
		return nil, err
	}
	if !account.IsOwnedBy(caller.UserID) {
		return nil, apperror.ErrAccountMismatch()
	}
	return account, nil
}

func (s *LookupServiceImpl) findByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account by number: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return account, nil
}
