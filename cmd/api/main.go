package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	memStorage "wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	"github.com/gin-gonic/gin"
)

// eventStreamMaxLen caps the transaction event stream (approximate trim).
const eventStreamMaxLen = 100_000

// storage bundles the repositories of the selected database driver.
type storage struct {
	users      ports.UserRepository
	accounts   ports.AccountRepository
	txns       ports.TransactionRepository
	audits     ports.AuditRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Wallet Ledger")

	ctx := context.Background()

	var db storage
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store := memStorage.NewStore()
		db = storage{
			users:      memStorage.NewUserRepo(store),
			accounts:   memStorage.NewAccountRepo(store),
			txns:       memStorage.NewTransactionRepo(store),
			audits:     memStorage.NewAuditRepo(store),
			transactor: memStorage.NewTransactor(store),
			health:     memStorage.NewHealthCheck(),
			close:      func() {},
		}
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
	default:
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		db = storage{
			users:      pgStorage.NewUserRepo(pool),
			accounts:   pgStorage.NewAccountRepo(pool),
			txns:       pgStorage.NewTransactionRepo(pool),
			audits:     pgStorage.NewAuditRepo(pool),
			transactor: pgStorage.NewTransactor(pool),
			health:     pgStorage.NewHealthCheck(pool),
			close:      pool.Close,
		}
	}
	defer db.close()

	checkers := []ports.HealthChecker{db.health}

	// Redis-backed components stay nil when Redis is disabled; every
	// consumer treats nil as "feature off".
	var (
		rateLimiter ports.RateLimiter
		nonceStore  ports.NonceStore
		requestKeys ports.RequestKeyStore
		lookupCache ports.LookupCache
		events      ports.EventPublisher
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		rateLimiter = redisStorage.NewRateLimitStore(rdb)
		nonceStore = redisStorage.NewNonceStore(rdb)
		requestKeys = redisStorage.NewRequestKeyStore(rdb)
		lookupCache = redisStorage.NewLookupCache(rdb, cfg.Lookup.CacheTTL, logger.Component(log, "lookup-cache"))
		events = redisStorage.NewEventPublisher(rdb, cfg.Redis.Stream, eventStreamMaxLen)
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb, cfg.Redis.Stream))
	} else {
		log.Warn().Msg("Redis disabled: rate limiting, replay guard, request dedup and events are off")
	}

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	accountStore := service.NewAccountStore(db.accounts, db.transactor, logger.Component(log, "accounts"))
	ledgerSvc := service.NewLedgerService(db.txns, db.accounts, db.transactor, events, logger.Component(log, "ledger"))
	approvalSvc := service.NewApprovalService(db.txns, accountStore, db.transactor, events, logger.Component(log, "approval"))
	lookupSvc := service.NewLookupService(db.accounts, lookupCache, logger.Component(log, "lookup"))
	requestSvc := service.NewRequestService(lookupSvc, ledgerSvc, approvalSvc, requestKeys, cfg.Approval.AutoApproveDebits, logger.Component(log, "requests"))
	authSvc := service.NewAuthService(db.users, accountStore, db.transactor, hashSvc, tokenSvc, cfg.Auth.AdminEmails, logger.Component(log, "auth"))
	auditSvc := service.NewAuditService(db.audits, logger.Component(log, "audit"))

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetOpenAPISpec(specBytes)
		log.Info().Msg("OpenAPI document loaded, Swagger UI at /docs")
	} else {
		log.Warn().Err(err).Msg("OpenAPI document not found, /docs will be unavailable")
	}

	gin.SetMode(cfg.Server.Mode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LookupSvc:      lookupSvc,
		RequestSvc:     requestSvc,
		LedgerSvc:      ledgerSvc,
		ApprovalSvc:    approvalSvc,
		AccountStore:   accountStore,
		TokenSvc:       tokenSvc,
		NonceStore:     nonceStore,
		RateLimiter:    rateLimiter,
		HealthCheckers: checkers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Flush in-flight audit writes before the pool closes.
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}
