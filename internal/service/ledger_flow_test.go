package service

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/storage/memory"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ledgerFlow wires the real services over the memory driver.
type ledgerFlow struct {
	accounts  *AccountStoreImpl
	ledger    *LedgerServiceImpl
	approvals *ApprovalServiceImpl
	lookup    *LookupServiceImpl
	auth      *AuthServiceImpl
	admin     domain.Caller
}

func newLedgerFlow(t *testing.T) *ledgerFlow {
	t.Helper()
	store := memory.NewStore()
	transactor := memory.NewTransactor(store)
	accountRepo := memory.NewAccountRepo(store)
	txRepo := memory.NewTransactionRepo(store)
	log := newTestLogger()

	accounts := NewAccountStore(accountRepo, transactor, log)
	return &ledgerFlow{
		accounts:  accounts,
		ledger:    NewLedgerService(txRepo, accountRepo, transactor, nil, log),
		approvals: NewApprovalService(txRepo, accounts, transactor, nil, log),
		lookup:    NewLookupService(accountRepo, nil, log),
		auth: NewAuthService(
			memory.NewUserRepo(store), accounts, transactor,
			NewArgon2HashServiceWithParams(testArgon2Params),
			NewJWTTokenService(testJWTSecret, time.Hour, "test"),
			nil, log,
		),
		admin: domain.Caller{UserID: uuid.New(), Role: domain.RoleAdmin},
	}
}

// openAccount registers a user and funds the account with an approved credit.
func (f *ledgerFlow) openAccount(t *testing.T, balance int64) *ports.RegisterResponse {
	t.Helper()
	ctx := context.Background()
	resp, err := f.auth.Register(ctx, ports.RegisterRequest{
		Name:     "Amina Diallo",
		Email:    uuid.NewString() + "@example.com",
		Password: "pw",
	})
	require.NoError(t, err)
	if balance > 0 {
		_, err = f.accounts.Credit(ctx, resp.AccountID, balance)
		require.NoError(t, err)
	}
	return resp
}

func (f *ledgerFlow) pending(t *testing.T, accountID uuid.UUID, txType domain.TransactionType, amount int64) *domain.Transaction {
	t.Helper()
	txn, err := f.ledger.Create(context.Background(), ports.CreateTransactionRequest{
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Method:    "bank_transfer",
	})
	require.NoError(t, err)
	return txn
}

func (f *ledgerFlow) balance(t *testing.T, accountID uuid.UUID) int64 {
	t.Helper()
	b, err := f.accounts.GetBalance(context.Background(), accountID)
	require.NoError(t, err)
	return b
}

func TestLedgerFlow_ApproveCreditThenReplay(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 100)
	txn := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 50)

	approved, err := f.approvals.Approve(ctx, f.admin, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusSuccess, approved.Status)
	assert.Equal(t, int64(150), f.balance(t, acc.AccountID))

	_, err = f.approvals.Approve(ctx, f.admin, txn.ID)
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyResolved))
	assert.Equal(t, int64(150), f.balance(t, acc.AccountID))
}

func TestLedgerFlow_RejectLeavesBalance(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 100)
	txn := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 30)

	_, err := f.approvals.Reject(ctx, f.admin, txn.ID, "")
	assert.True(t, apperror.Is(err, apperror.CodeMissingReason))

	rejected, err := f.approvals.Reject(ctx, f.admin, txn.ID, "Payment receipt invalid")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, rejected.Status)
	assert.Equal(t, "Payment receipt invalid", *rejected.RejectionReason)
	assert.Equal(t, int64(100), f.balance(t, acc.AccountID))

	stored, err := f.ledger.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, stored.Status)

	// Terminal states accept nothing further.
	_, err = f.approvals.Approve(ctx, f.admin, txn.ID)
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyResolved))
	_, err = f.approvals.Reject(ctx, f.admin, txn.ID, "again")
	assert.True(t, apperror.Is(err, apperror.CodeAlreadyResolved))
}

func TestLedgerFlow_LookupHidesBalance(t *testing.T) {
	f := newLedgerFlow(t)
	acc := f.openAccount(t, 9999)

	pub, err := f.lookup.LookupByAccountNumber(context.Background(), acc.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, acc.AccountID, pub.AccountID)
	assert.Equal(t, "Amina Diallo", pub.Name)
	assert.NotEmpty(t, pub.Email)
}

func TestLedgerFlow_FailedDebitStaysPending(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 40)
	txn := f.pending(t, acc.AccountID, domain.TransactionTypeDebit, 50)

	_, err := f.approvals.Approve(ctx, f.admin, txn.ID)
	assert.True(t, apperror.Is(err, apperror.CodeInsufficientFunds))

	stored, err := f.ledger.Get(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, stored.Status)
	assert.Equal(t, int64(40), f.balance(t, acc.AccountID))

	// After a top-up the same request can go through.
	_, err = f.accounts.Credit(ctx, acc.AccountID, 10)
	require.NoError(t, err)
	_, err = f.approvals.Approve(ctx, f.admin, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.balance(t, acc.AccountID))
}

func TestLedgerFlow_ConcurrentApprovalsCreditOnce(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 100)
	txn := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 50)

	const attempts = 100
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		resolved  atomic.Int32
		start     = make(chan struct{})
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.approvals.Approve(ctx, f.admin, txn.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperror.Is(err, apperror.CodeAlreadyResolved):
				resolved.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), resolved.Load())
	assert.Equal(t, int64(150), f.balance(t, acc.AccountID))
}

func TestLedgerFlow_ConcurrentSameReferenceRecordsOnce(t *testing.T) {
	tests := []struct {
		name string
		keys func(t *testing.T) ports.RequestKeyStore
	}{
		{name: "database only", keys: func(t *testing.T) ports.RequestKeyStore { return nil }},
		{name: "with request key cache", keys: func(t *testing.T) ports.RequestKeyStore {
			mr := miniredis.RunT(t)
			client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return redisStorage.NewRequestKeyStore(client)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFlow(t)
			ctx := context.Background()
			acc := f.openAccount(t, 0)
			caller := domain.Caller{UserID: acc.UserID, Role: acc.Role}
			requests := NewRequestService(f.lookup, f.ledger, f.approvals, tt.keys(t), false, newTestLogger())

			const attempts = 20
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				ids   = make(map[uuid.UUID]struct{})
				start = make(chan struct{})
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					txn, err := requests.RequestDeposit(ctx, caller, ports.MoneyRequest{
						AccountNumber: acc.AccountNumber,
						Amount:        500,
						Method:        "card",
						Reference:     "invoice-2024-001",
					})
					if err != nil {
						t.Errorf("unexpected error: %v", err)
						return
					}
					mu.Lock()
					ids[txn.ID] = struct{}{}
					mu.Unlock()
				}()
			}
			close(start)
			wg.Wait()

			assert.Len(t, ids, 1, "every caller gets the same transaction")
			queue, err := f.ledger.ListPending(ctx)
			require.NoError(t, err)
			assert.Len(t, queue, 1)
		})
	}
}

func TestLedgerFlow_ConcurrentMutationsOnOneAccount(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 10000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		credit := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 7)
		debit := f.pending(t, acc.AccountID, domain.TransactionTypeDebit, 3)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.approvals.Approve(ctx, f.admin, credit.ID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := f.approvals.Approve(ctx, f.admin, debit.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10000+50*7-50*3), f.balance(t, acc.AccountID))
}

func TestLedgerFlow_Conservation(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	const initial = 5000
	acc := f.openAccount(t, initial)
	want := int64(initial)

	for i := 0; i < 200; i++ {
		txType := domain.TransactionTypeCredit
		if rng.Intn(2) == 0 {
			txType = domain.TransactionTypeDebit
		}
		amount := int64(rng.Intn(400) + 1)
		txn := f.pending(t, acc.AccountID, txType, amount)

		if rng.Intn(4) == 0 {
			_, err := f.approvals.Reject(ctx, f.admin, txn.ID, "random rejection")
			require.NoError(t, err)
			continue
		}

		approved, err := f.approvals.Approve(ctx, f.admin, txn.ID)
		if err != nil {
			require.True(t, apperror.Is(err, apperror.CodeInsufficientFunds), "unexpected error: %v", err)
			continue
		}
		require.Equal(t, domain.TransactionStatusSuccess, approved.Status)
		if txType == domain.TransactionTypeCredit {
			want += amount
		} else {
			want -= amount
		}
	}

	assert.Equal(t, want, f.balance(t, acc.AccountID))
	assert.GreaterOrEqual(t, want, int64(0))
}

func TestLedgerFlow_PendingQueueOrder(t *testing.T) {
	f := newLedgerFlow(t)
	ctx := context.Background()
	acc := f.openAccount(t, 0)

	first := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 1)
	second := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 2)
	third := f.pending(t, acc.AccountID, domain.TransactionTypeCredit, 3)

	_, err := f.approvals.Approve(ctx, f.admin, second.ID)
	require.NoError(t, err)

	queue, err := f.ledger.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, third.ID, queue[1].ID)

	all, total, err := f.ledger.ListAll(ctx, domain.TransactionFilter{AccountID: &acc.AccountID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, third.ID, all[0].ID, "history is newest first")
}
