package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LookupSvc      ports.AccountLookupService
	RequestSvc     ports.RequestService
	LedgerSvc      ports.LedgerService
	ApprovalSvc    ports.ApprovalService
	AccountStore   ports.AccountStore
	TokenSvc       ports.TokenService
	NonceStore     ports.NonceStore  // nil = admin replay guard disabled
	RateLimiter    ports.RateLimiter // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	docs := r.Group("/docs")
	{
		docs.GET("", SwaggerUI)
		docs.GET("/openapi.yaml", OpenAPISpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	accountHandler := NewAccountHandler(deps.LookupSvc, deps.RequestSvc)

	// --- Authenticated client routes ---
	v1.GET("/accounts/lookup/:accountNumber", jwtAuth, rl("lookup"), accountHandler.Lookup)

	mine := v1.Group("/me/accounts/:accountNumber", jwtAuth)
	{
		mine.GET("", rl("client"), accountHandler.Get)
		mine.GET("/balance", rl("client"), accountHandler.Balance)
		mine.GET("/transactions", rl("client"), accountHandler.History)
		mine.POST("/deposits", rl("requests"), accountHandler.Deposit)
		mine.POST("/withdrawals", rl("requests"), accountHandler.Withdraw)
	}

	// --- Admin routes ---
	adminChain := []gin.HandlerFunc{jwtAuth, middleware.RequireAdmin(), rl("admin")}
	if deps.NonceStore != nil {
		adminChain = append(adminChain, middleware.NonceGuard(deps.NonceStore, deps.Logger))
	}
	adminHandler := NewAdminHandler(deps.LedgerSvc, deps.ApprovalSvc, deps.AccountStore)
	admin := v1.Group("/admin", adminChain...)
	{
		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.GET("/transactions/pending", adminHandler.ListPending)
		admin.GET("/transactions/:id", adminHandler.GetTransaction)
		admin.POST("/transactions/:id/approve", adminHandler.Approve)
		admin.POST("/transactions/:id/reject", adminHandler.Reject)
		admin.GET("/accounts/:id/balance", adminHandler.AccountBalance)
	}

	return r
}
