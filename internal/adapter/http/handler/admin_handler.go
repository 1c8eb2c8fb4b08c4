package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the approval queue and ledger inspection endpoints.
// Every route sits behind RequireAdmin.
type AdminHandler struct {
	ledgerSvc    ports.LedgerService
	approvalSvc  ports.ApprovalService
	accountStore ports.AccountStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ledgerSvc ports.LedgerService, approvalSvc ports.ApprovalService, accountStore ports.AccountStore) *AdminHandler {
	return &AdminHandler{
		ledgerSvc:    ledgerSvc,
		approvalSvc:  approvalSvc,
		accountStore: accountStore,
	}
}

// ListPending handles GET /api/v1/admin/transactions/pending.
func (h *AdminHandler) ListPending(c *gin.Context) {
	txns, err := h.ledgerSvc.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionItems(txns))
}

// ListTransactions handles GET /api/v1/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	q, ok := bindQuery[dto.TransactionListQuery](c)
	if !ok {
		return
	}

	filter := q.Filter()
	txns, total, err := h.ledgerSvc.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionList(txns, total, filter))
}

// GetTransaction handles GET /api/v1/admin/transactions/:id.
func (h *AdminHandler) GetTransaction(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	txn, err := h.ledgerSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// Approve handles POST /api/v1/admin/transactions/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	caller, id, ok := adminRequest(c)
	if !ok {
		return
	}

	txn, err := h.approvalSvc.Approve(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// Reject handles POST /api/v1/admin/transactions/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	caller, id, ok := adminRequest(c)
	if !ok {
		return
	}

	req, ok := bindBody[dto.RejectRequest](c)
	if !ok {
		return
	}

	txn, err := h.approvalSvc.Reject(c.Request.Context(), caller, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponse(txn))
}

// AccountBalance handles GET /api/v1/admin/accounts/:id/balance.
func (h *AdminHandler) AccountBalance(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	balance, err := h.accountStore.GetBalance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AccountID: id.String(),
		Balance:   domain.FormatAmount(balance),
	})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, apperror.Validation(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func adminRequest(c *gin.Context) (domain.Caller, uuid.UUID, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return domain.Caller{}, uuid.Nil, false
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return domain.Caller{}, uuid.Nil, false
	}
	return caller, id, true
}
