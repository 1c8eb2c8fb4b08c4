package handler

import (
	"context"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the client-facing account endpoints: recipient
// lookup, the owner's balance and history, and money requests.
type AccountHandler struct {
	lookupSvc  ports.AccountLookupService
	requestSvc ports.RequestService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(lookupSvc ports.AccountLookupService, requestSvc ports.RequestService) *AccountHandler {
	return &AccountHandler{lookupSvc: lookupSvc, requestSvc: requestSvc}
}

// Lookup handles GET /api/v1/accounts/lookup/:accountNumber.
func (h *AccountHandler) Lookup(c *gin.Context) {
	number, ok := accountNumberParam(c)
	if !ok {
		return
	}

	account, err := h.lookupSvc.LookupByAccountNumber(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewPublicAccountResponse(account))
}

// Get handles GET /api/v1/me/accounts/:accountNumber.
func (h *AccountHandler) Get(c *gin.Context) {
	caller, number, ok := ownerRequest(c)
	if !ok {
		return
	}

	account, err := h.requestSvc.Balance(c.Request.Context(), caller, number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewAccountResponse(account))
}

// Balance handles GET /api/v1/me/accounts/:accountNumber/balance.
func (h *AccountHandler) Balance(c *gin.Context) {
	caller, number, ok := ownerRequest(c)
	if !ok {
		return
	}

	account, err := h.requestSvc.Balance(c.Request.Context(), caller, number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AccountID: account.ID.String(),
		Balance:   domain.FormatAmount(account.Balance),
	})
}

// History handles GET /api/v1/me/accounts/:accountNumber/transactions.
func (h *AccountHandler) History(c *gin.Context) {
	caller, number, ok := ownerRequest(c)
	if !ok {
		return
	}

	q, ok := bindQuery[dto.HistoryQuery](c)
	if !ok {
		return
	}

	filter := q.Filter()
	txns, total, err := h.requestSvc.History(c.Request.Context(), caller, number, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionList(txns, total, filter))
}

// Deposit handles POST /api/v1/me/accounts/:accountNumber/deposits.
func (h *AccountHandler) Deposit(c *gin.Context) {
	h.moneyRequest(c, h.requestSvc.RequestDeposit)
}

// Withdraw handles POST /api/v1/me/accounts/:accountNumber/withdrawals.
func (h *AccountHandler) Withdraw(c *gin.Context) {
	h.moneyRequest(c, h.requestSvc.RequestWithdrawal)
}

type requestFunc func(ctx context.Context, caller domain.Caller, req ports.MoneyRequest) (*domain.Transaction, error)

func (h *AccountHandler) moneyRequest(c *gin.Context, submit requestFunc) {
	caller, number, ok := ownerRequest(c)
	if !ok {
		return
	}

	req, ok := bindBody[dto.MoneyRequest](c)
	if !ok {
		return
	}

	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := submit(c.Request.Context(), caller, ports.MoneyRequest{
		AccountNumber: number,
		Amount:        amount,
		Method:        req.Method,
		Reference:     req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(txn))
}

// accountNumberParam reads and validates the :accountNumber path parameter,
// writing the error response itself on failure.
func accountNumberParam(c *gin.Context) (string, bool) {
	number := c.Param("accountNumber")
	if !dto.IsAccountNumber(number) {
		response.Error(c, apperror.Validation("account number must be 10 digits"))
		return "", false
	}
	return number, true
}

func ownerRequest(c *gin.Context) (domain.Caller, string, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return domain.Caller{}, "", false
	}
	number, ok := accountNumberParam(c)
	if !ok {
		return domain.Caller{}, "", false
	}
	return caller, number, true
}
