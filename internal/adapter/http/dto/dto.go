package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Mobile   string `json:"mobile" binding:"omitempty,max=20"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	UserID        string `json:"user_id"`
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	Role          string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// MoneyRequest is the request body for deposit and withdrawal requests.
// Amount is a decimal string with at most two fractional digits, e.g. "150.50".
type MoneyRequest struct {
	Amount    string `json:"amount" binding:"required,amount"`
	Method    string `json:"method" binding:"required,max=50"`
	Reference string `json:"reference" binding:"omitempty,max=100,safe_id"`
}

// RejectRequest is the request body for rejecting a pending transaction.
// An empty reason is refused by the ledger, not by binding.
type RejectRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// HistoryQuery holds the paging and status filters of a history listing.
type HistoryQuery struct {
	Status   string `form:"status" binding:"omitempty,tx_status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Filter converts the query into a ledger filter.
func (q HistoryQuery) Filter() domain.TransactionFilter {
	filter := domain.TransactionFilter{Page: q.Page, PageSize: q.PageSize}
	if q.Status != "" {
		status := domain.TransactionStatus(q.Status)
		filter.Status = &status
	}
	return filter
}

// TransactionListQuery holds the admin list filters.
type TransactionListQuery struct {
	HistoryQuery
	AccountID string `form:"account_id" binding:"omitempty,uuid"`
}

// Filter converts the query into a ledger filter. AccountID has already
// passed the uuid binding rule.
func (q TransactionListQuery) Filter() domain.TransactionFilter {
	filter := q.HistoryQuery.Filter()
	if id, err := uuid.Parse(q.AccountID); err == nil {
		filter.AccountID = &id
	}
	return filter
}

// TransactionResponse is the response body for a ledger entry.
type TransactionResponse struct {
	ID              string  `json:"id"`
	AccountID       string  `json:"account_id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	Method          string  `json:"method"`
	Reference       *string `json:"reference,omitempty"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ResolvedBy      *string `json:"resolved_by,omitempty"`
	CreatedAt       string  `json:"created_at"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
}

// AccountResponse is the owner's full view of an account.
type AccountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	OwnerName     string `json:"owner_name"`
	OwnerEmail    string `json:"owner_email"`
	OwnerMobile   string `json:"owner_mobile,omitempty"`
	Balance       string `json:"balance"`
	CreatedAt     string `json:"created_at"`
}

// PublicAccountResponse is the lookup result. It has no balance.
type PublicAccountResponse struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// BalanceResponse is the response for balance queries.
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
}

// TransactionListResponse wraps paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// NewTransactionResponse renders a domain transaction.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID.String(),
		AccountID:       t.AccountID.String(),
		Type:            string(t.Type),
		Amount:          domain.FormatAmount(t.Amount),
		Method:          t.Method,
		Reference:       t.Reference,
		Status:          string(t.Status),
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt.Format(time.RFC3339),
	}
	if t.ResolvedBy != nil {
		s := t.ResolvedBy.String()
		resp.ResolvedBy = &s
	}
	if t.ResolvedAt != nil {
		s := t.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	return resp
}

// NewTransactionItems renders a slice of transactions, never nil.
func NewTransactionItems(txns []domain.Transaction) []TransactionResponse {
	items := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, NewTransactionResponse(&txns[i]))
	}
	return items
}

// NewTransactionList renders one page of transactions.
func NewTransactionList(txns []domain.Transaction, total int64, filter domain.TransactionFilter) TransactionListResponse {
	filter = filter.Normalize()
	return TransactionListResponse{
		Items:      NewTransactionItems(txns),
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize)),
	}
}

// NewAccountResponse renders the owner's view of an account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID.String(),
		AccountNumber: a.AccountNumber,
		OwnerName:     a.OwnerName,
		OwnerEmail:    a.OwnerEmail,
		OwnerMobile:   a.OwnerMobile,
		Balance:       domain.FormatAmount(a.Balance),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}
}

// NewPublicAccountResponse renders a lookup result.
func NewPublicAccountResponse(p *domain.PublicAccount) PublicAccountResponse {
	return PublicAccountResponse{
		AccountID: p.AccountID.String(),
		Name:      p.Name,
		Email:     p.Email,
	}
}
