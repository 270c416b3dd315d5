package handler

import (
	"account-ledger/internal/adapter/http/middleware"
	"account-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	AccountSvc     ports.AccountService
	TokenSvc       ports.TokenService   // nil = authentication disabled
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
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
	r.Use(middleware.AuditLog(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rules[group], deps.Logger)
	}

	v1 := r.Group("/api/v1")
	if deps.TokenSvc != nil {
		v1.Use(middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	}

	accountHandler := NewAccountHandler(deps.AccountSvc)
	accounts := v1.Group("/accounts")
	{
		accounts.POST("", rl(middleware.GroupAccountsWrite), accountHandler.Create)
		accounts.GET("/:id", rl(middleware.GroupReads), accountHandler.Get)
		accounts.PATCH("/:id", rl(middleware.GroupAccountsWrite), accountHandler.Rename)
		accounts.GET("/:id/transfers", rl(middleware.GroupReads), accountHandler.ListTransfers)
	}

	transferHandler := NewTransferHandler(deps.LedgerSvc, deps.AccountSvc)
	transfers := v1.Group("/transfers")
	{
		transfers.POST("", rl(middleware.GroupTransfers), transferHandler.Create)
		transfers.GET("/:id", rl(middleware.GroupReads), transferHandler.Get)
	}

	return r
}
