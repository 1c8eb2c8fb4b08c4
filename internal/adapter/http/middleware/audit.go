package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
	param        string // path parameter holding the resource id
}

// auditRoutes is keyed by "METHOD route-template".
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/auth/register":                          {domain.AuditActionRegister, "user", ""},
	"POST /api/v1/auth/login":                             {domain.AuditActionLogin, "session", ""},
	"POST /api/v1/me/accounts/:accountNumber/deposits":    {domain.AuditActionDepositRequest, "account", "accountNumber"},
	"POST /api/v1/me/accounts/:accountNumber/withdrawals": {domain.AuditActionWithdrawRequest, "account", "accountNumber"},
	"POST /api/v1/admin/transactions/:id/approve":         {domain.AuditActionApprove, "transaction", "id"},
	"POST /api/v1/admin/transactions/:id/reject":          {domain.AuditActionReject, "transaction", "id"},
}

// AuditLog creates an audit middleware that records successful writes.
// Routes are matched by template, so path parameters do not matter.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var actorID *uuid.UUID
		if caller, ok := CallerFrom(c); ok {
			actorID = caller.ActorID()
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(response.CtxRequestID),
		})

		entry := &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actorID,
			Action:       route.action,
			ResourceType: route.resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		}
		if route.param != "" {
			entry.ResourceID = c.Param(route.param)
		}

		auditSvc.Log(c.Request.Context(), entry)
	}
}
