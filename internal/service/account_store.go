package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	accountNumberDigits   = 10
	accountNumberAttempts = 5
)

// AccountStoreImpl implements ports.AccountStore. It is the only component
// that writes account balances.
type AccountStoreImpl struct {
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewAccountStore creates a new AccountStoreImpl.
func NewAccountStore(
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AccountStoreImpl {
	return &AccountStoreImpl{
		accountRepo: accountRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Credit increases the balance in its own database transaction.
func (s *AccountStoreImpl) Credit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (int64, error) {
		return s.CreditInTx(ctx, tx, accountID, amount)
	})
}

// Debit decreases the balance in its own database transaction.
func (s *AccountStoreImpl) Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (int64, error) {
		return s.DebitInTx(ctx, tx, accountID, amount)
	})
}

// GetBalance returns the committed balance.
func (s *AccountStoreImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrAccountNotFound()
	}
	return account.Balance, nil
}

// CreditInTx locks the account row and adds amount inside tx.
func (s *AccountStoreImpl) CreditInTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	account, err := s.lockAccount(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	if account.Balance > math.MaxInt64-amount {
		return 0, apperror.ErrBalanceOverflow()
	}
	newBalance := account.Balance + amount

	if err := s.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// DebitInTx locks the account row and subtracts amount inside tx.
func (s *AccountStoreImpl) DebitInTx(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	account, err := s.lockAccount(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	// Business rule: sufficient funds
	if account.Balance < amount {
		return 0, apperror.ErrInsufficientFunds()
	}
	newBalance := account.Balance - amount

	if err := s.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return newBalance, nil
}

// Open creates a zero-balance account for owner inside tx.
func (s *AccountStoreImpl) Open(ctx context.Context, tx pgx.Tx, owner *domain.User) (*domain.Account, error) {
	now := time.Now().UTC()
	account := &domain.Account{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		OwnerEmail:  owner.Email,
		OwnerMobile: owner.Mobile,
		Balance:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; attempt <= accountNumberAttempts; attempt++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate account number: %w", err))
		}

		existing, err := s.accountRepo.GetByNumber(ctx, number)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check account number: %w", err))
		}
		if existing != nil {
			continue
		}

		account.AccountNumber = number
		err = s.accountRepo.Create(ctx, tx, account)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, ports.ErrDuplicateAccountNumber) {
			return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
		}
		// A concurrent registration won the number; the insert already
		// failed, so Postgres has aborted tx and a retry cannot succeed.
		break
	}
	return nil, apperror.InternalError(errors.New("could not allocate a unique account number"))
}

func (s *AccountStoreImpl) lockAccount(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return account, nil
}

func (s *AccountStoreImpl) inTx(ctx context.Context, fn func(tx pgx.Tx) (int64, error)) (int64, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := fn(dbTx)
	if err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return balance, nil
}

// generateAccountNumber returns a random 10-digit number with no leading zero.
func generateAccountNumber() (string, error) {
	low := int64(math.Pow10(accountNumberDigits - 1))
	n, err := rand.Int(rand.Reader, big.NewInt(9*low))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+low), nil
}
