package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testAccountNumber = "4012345678"

// newContext builds a test context with an optional JSON body and caller.
func newContext(method, target string, body interface{}, caller *domain.Caller) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	if caller != nil {
		c.Set(middleware.CtxCaller, *caller)
	}
	return c, w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func userCaller() *domain.Caller {
	return &domain.Caller{UserID: uuid.New(), Role: domain.RoleUser}
}

func adminCaller() *domain.Caller {
	return &domain.Caller{UserID: uuid.New(), Role: domain.RoleAdmin}
}

func pendingTxn(accountID uuid.UUID, txType domain.TransactionType, amount int64) *domain.Transaction {
	return &domain.Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Method:    "bank_transfer",
		Status:    domain.TransactionStatusPending,
		CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	userID, accountID := uuid.New(), uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Name:     "Amina Diallo",
		Email:    "amina@example.com",
		Password: "password123",
	}).Return(&ports.RegisterResponse{
		UserID:        userID,
		AccountID:     accountID,
		AccountNumber: testAccountNumber,
		Role:          domain.RoleUser,
	}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Amina Diallo",
		Email:    "amina@example.com",
		Password: "password123",
	}, nil)

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, userID.String(), data["user_id"])
	assert.Equal(t, accountID.String(), data["account_id"])
	assert.Equal(t, testAccountNumber, data["account_number"])
	assert.Equal(t, "USER", data["role"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	c, w := newContext(http.MethodPost, "/api/v1/auth/register", map[string]string{}, nil)
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQ_001", errorCodeOf(t, w))
}

func TestRegister_EmailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrEmailExists())

	c, w := newContext(http.MethodPost, "/", dto.RegisterRequest{
		Name:     "Taken",
		Email:    "taken@example.com",
		Password: "password123",
	}, nil)
	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(12 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "amina@example.com", "password123").Return("jwt-token-123", expiry, nil)

	c, w := newContext(http.MethodPost, "/", dto.LoginRequest{Email: "amina@example.com", Password: "password123"}, nil)
	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "jwt-token-123", data["token"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad@example.com", "bad").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	c, w := newContext(http.MethodPost, "/", dto.LoginRequest{Email: "bad@example.com", Password: "bad"}, nil)
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Account Handler Tests ---

func TestLookup_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLookup := mocks.NewMockAccountLookupService(ctrl)
	h := NewAccountHandler(mockLookup, mocks.NewMockRequestService(ctrl))

	accountID := uuid.New()
	mockLookup.EXPECT().LookupByAccountNumber(gomock.Any(), testAccountNumber).Return(&domain.PublicAccount{
		AccountID: accountID,
		Name:      "Amina Diallo",
		Email:     "amina@example.com",
	}, nil)

	c, w := newContext(http.MethodGet, "/", nil, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Lookup(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, accountID.String(), data["account_id"])
	assert.Equal(t, "Amina Diallo", data["name"])
	assert.NotContains(t, data, "balance")
}

func TestLookup_MalformedNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mocks.NewMockRequestService(ctrl))

	c, w := newContext(http.MethodGet, "/", nil, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: "12ab"}}
	h.Lookup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookup_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLookup := mocks.NewMockAccountLookupService(ctrl)
	h := NewAccountHandler(mockLookup, mocks.NewMockRequestService(ctrl))

	mockLookup.EXPECT().LookupByAccountNumber(gomock.Any(), testAccountNumber).Return(nil, apperror.ErrAccountNotFound())

	c, w := newContext(http.MethodGet, "/", nil, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Lookup(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeAccountNotFound, errorCodeOf(t, w))
}

func TestBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mockRequests)

	caller := userCaller()
	account := &domain.Account{ID: uuid.New(), AccountNumber: testAccountNumber, OwnerID: caller.UserID, Balance: 15050}
	mockRequests.EXPECT().Balance(gomock.Any(), *caller, testAccountNumber).Return(account, nil)

	c, w := newContext(http.MethodGet, "/", nil, caller)
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Balance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "150.50", data["balance"])
	assert.Equal(t, account.ID.String(), data["account_id"])
}

func TestBalance_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mockRequests)

	mockRequests.EXPECT().Balance(gomock.Any(), gomock.Any(), testAccountNumber).Return(nil, apperror.ErrAccountMismatch())

	c, w := newContext(http.MethodGet, "/", nil, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Balance(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBalance_NoCaller(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mocks.NewMockRequestService(ctrl))

	c, w := newContext(http.MethodGet, "/", nil, nil)
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Balance(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mockRequests)

	caller := userCaller()
	txn := pendingTxn(uuid.New(), domain.TransactionTypeCredit, 15050)
	mockRequests.EXPECT().RequestDeposit(gomock.Any(), *caller, ports.MoneyRequest{
		AccountNumber: testAccountNumber,
		Amount:        15050,
		Method:        "bank_transfer",
		Reference:     "ref-001",
	}).Return(txn, nil)

	c, w := newContext(http.MethodPost, "/", dto.MoneyRequest{
		Amount:    "150.50",
		Method:    "bank_transfer",
		Reference: "ref-001",
	}, caller)
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, txn.ID.String(), data["id"])
	assert.Equal(t, "CREDIT", data["type"])
	assert.Equal(t, "150.50", data["amount"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestDeposit_BadAmountFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mocks.NewMockRequestService(ctrl))

	for _, amount := range []string{"abc", "1.234", ""} {
		c, w := newContext(http.MethodPost, "/", dto.MoneyRequest{Amount: amount, Method: "card"}, userCaller())
		c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
		h.Deposit(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %q", amount)
	}
}

func TestWithdraw_NonPositiveAmountRejectedByService(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mockRequests)

	mockRequests.EXPECT().RequestWithdrawal(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ domain.Caller, req ports.MoneyRequest) (*domain.Transaction, error) {
			assert.Equal(t, int64(-500), req.Amount)
			return nil, apperror.ErrInvalidAmount()
		})

	c, w := newContext(http.MethodPost, "/", dto.MoneyRequest{Amount: "-5", Method: "card"}, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.Withdraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeInvalidAmount, errorCodeOf(t, w))
}

func TestHistory_PassesFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRequests := mocks.NewMockRequestService(ctrl)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mockRequests)

	caller := userCaller()
	accountID := uuid.New()
	txns := []domain.Transaction{
		*pendingTxn(accountID, domain.TransactionTypeCredit, 100),
		*pendingTxn(accountID, domain.TransactionTypeDebit, 50),
	}
	mockRequests.EXPECT().History(gomock.Any(), *caller, testAccountNumber, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ domain.Caller, _ string, f domain.TransactionFilter) ([]domain.Transaction, int64, error) {
			require.NotNil(t, f.Status)
			assert.Equal(t, domain.TransactionStatusPending, *f.Status)
			assert.Equal(t, 2, f.Page)
			assert.Equal(t, 2, f.PageSize)
			return txns, 5, nil
		})

	c, w := newContext(http.MethodGet, "/?status=PENDING&page=2&page_size=2", nil, caller)
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(5), data["total"])
	assert.Equal(t, float64(3), data["total_pages"])
}

func TestHistory_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAccountHandler(mocks.NewMockAccountLookupService(ctrl), mocks.NewMockRequestService(ctrl))

	c, w := newContext(http.MethodGet, "/?status=REVERSED", nil, userCaller())
	c.Params = gin.Params{{Key: "accountNumber", Value: testAccountNumber}}
	h.History(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Admin Handler Tests ---

func newAdminHandler(ctrl *gomock.Controller) (*AdminHandler, *mocks.MockLedgerService, *mocks.MockApprovalService, *mocks.MockAccountStore) {
	ledger := mocks.NewMockLedgerService(ctrl)
	approvals := mocks.NewMockApprovalService(ctrl)
	store := mocks.NewMockAccountStore(ctrl)
	return NewAdminHandler(ledger, approvals, store), ledger, approvals, store
}

func TestListPending_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, ledger, _, _ := newAdminHandler(ctrl)

	accountID := uuid.New()
	ledger.EXPECT().ListPending(gomock.Any()).Return([]domain.Transaction{
		*pendingTxn(accountID, domain.TransactionTypeCredit, 10000),
	}, nil)

	c, w := newContext(http.MethodGet, "/", nil, adminCaller())
	h.ListPending(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "100.00", resp.Data[0]["amount"])
}

func TestListPending_EmptyIsArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, ledger, _, _ := newAdminHandler(ctrl)

	ledger.EXPECT().ListPending(gomock.Any()).Return(nil, nil)

	c, w := newContext(http.MethodGet, "/", nil, adminCaller())
	h.ListPending(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestListTransactions_FilterByAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, ledger, _, _ := newAdminHandler(ctrl)

	accountID := uuid.New()
	ledger.EXPECT().ListAll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, f domain.TransactionFilter) ([]domain.Transaction, int64, error) {
			require.NotNil(t, f.AccountID)
			assert.Equal(t, accountID, *f.AccountID)
			assert.Nil(t, f.Status)
			return nil, 0, nil
		})

	c, w := newContext(http.MethodGet, "/?account_id="+accountID.String(), nil, adminCaller())
	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, float64(1), data["page"])
	assert.Equal(t, float64(domain.DefaultPageSize), data["page_size"])
}

func TestListTransactions_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, ledger, _, _ := newAdminHandler(ctrl)

	ledger.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return(nil, int64(0), errors.New("db down"))

	c, w := newContext(http.MethodGet, "/", nil, adminCaller())
	h.ListTransactions(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetTransaction_InvalidID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, _, _ := newAdminHandler(ctrl)

	c, w := newContext(http.MethodGet, "/", nil, adminCaller())
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	h.GetTransaction(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApprove_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, approvals, _ := newAdminHandler(ctrl)

	admin := adminCaller()
	txn := pendingTxn(uuid.New(), domain.TransactionTypeCredit, 10000)
	resolvedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	txn.Status = domain.TransactionStatusSuccess
	txn.ResolvedBy = &admin.UserID
	txn.ResolvedAt = &resolvedAt

	approvals.EXPECT().Approve(gomock.Any(), *admin, txn.ID).Return(txn, nil)

	c, w := newContext(http.MethodPost, "/", nil, admin)
	c.Params = gin.Params{{Key: "id", Value: txn.ID.String()}}
	h.Approve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, admin.UserID.String(), data["resolved_by"])
	assert.Equal(t, "2026-03-01T10:00:00Z", data["resolved_at"])
}

func TestApprove_AlreadyResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, approvals, _ := newAdminHandler(ctrl)

	id := uuid.New()
	approvals.EXPECT().Approve(gomock.Any(), gomock.Any(), id).Return(nil, apperror.ErrAlreadyResolved())

	c, w := newContext(http.MethodPost, "/", nil, adminCaller())
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperror.CodeAlreadyResolved, errorCodeOf(t, w))
}

func TestApprove_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, approvals, _ := newAdminHandler(ctrl)

	id := uuid.New()
	approvals.EXPECT().Approve(gomock.Any(), gomock.Any(), id).Return(nil, apperror.ErrInsufficientFunds())

	c, w := newContext(http.MethodPost, "/", nil, adminCaller())
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Approve(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestReject_PassesReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, approvals, _ := newAdminHandler(ctrl)

	admin := adminCaller()
	txn := pendingTxn(uuid.New(), domain.TransactionTypeCredit, 10000)
	reason := "Payment receipt invalid"
	txn.Status = domain.TransactionStatusFailed
	txn.RejectionReason = &reason

	approvals.EXPECT().Reject(gomock.Any(), *admin, txn.ID, reason).Return(txn, nil)

	c, w := newContext(http.MethodPost, "/", dto.RejectRequest{Reason: "  " + reason + " "}, admin)
	c.Params = gin.Params{{Key: "id", Value: txn.ID.String()}}
	h.Reject(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "FAILED", data["status"])
	assert.Equal(t, reason, data["rejection_reason"])
}

func TestReject_MissingReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, approvals, _ := newAdminHandler(ctrl)

	id := uuid.New()
	approvals.EXPECT().Reject(gomock.Any(), gomock.Any(), id, "").Return(nil, apperror.ErrMissingReason())

	c, w := newContext(http.MethodPost, "/", dto.RejectRequest{}, adminCaller())
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeMissingReason, errorCodeOf(t, w))
}

func TestAccountBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, _, _, store := newAdminHandler(ctrl)

	id := uuid.New()
	store.EXPECT().GetBalance(gomock.Any(), id).Return(int64(25000), nil)

	c, w := newContext(http.MethodGet, "/", nil, adminCaller())
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.AccountBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "250.00", dataOf(t, w)["balance"])
}

// --- Health Check & Docs ---

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	healthy := mocks.NewMockHealthChecker(ctrl)
	healthy.EXPECT().Ping(gomock.Any()).Return(nil)
	healthy.EXPECT().Name().Return("memory").AnyTimes()

	c, w := newContext(http.MethodGet, "/health", nil, nil)
	HealthCheck(healthy)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	ctrl := gomock.NewController(t)
	down := mocks.NewMockHealthChecker(ctrl)
	down.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	down.EXPECT().Name().Return("redis").AnyTimes()
	slow := mocks.NewMockHealthChecker(ctrl)
	slow.EXPECT().Ping(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return ctx.Err()
	})
	slow.EXPECT().Name().Return("postgres").AnyTimes()

	c, w := newContext(http.MethodGet, "/health", nil, nil)
	HealthCheck(down, slow)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redisDep["status"])
	assert.Equal(t, "connection refused", redisDep["error"])
	pgDep := deps["postgres"].(map[string]interface{})
	assert.Equal(t, "healthy", pgDep["status"], "a failing check does not cancel the others")
}

func TestSwaggerUI(t *testing.T) {
	c, w := newContext(http.MethodGet, "/docs", nil, nil)
	SwaggerUI(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/docs/openapi.yaml")
}

func TestOpenAPISpec(t *testing.T) {
	SetOpenAPISpec(nil)
	c, w := newContext(http.MethodGet, "/docs/openapi.yaml", nil, nil)
	OpenAPISpec(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	SetOpenAPISpec([]byte("openapi: '3.0.3'\ninfo:\n  title: Test"))
	t.Cleanup(func() { SetOpenAPISpec(nil) })
	c, w = newContext(http.MethodGet, "/docs/openapi.yaml", nil, nil)
	OpenAPISpec(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi")
}
