package postgres

import (
	"context"
	"errors"
	"fmt"
)

// ErrSchemaMissing is reported by the health check before migrations ran.
var ErrSchemaMissing = errors.New("ledger schema missing: run `ledgerctl migrate up`")

const schemaQuery = `SELECT to_regclass('accounts') IS NOT NULL AND to_regclass('transfers') IS NOT NULL`

// HealthCheck implements ports.HealthChecker for the ledger database.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks connectivity and that both ledger tables exist.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var migrated bool
	if err := h.pool.QueryRow(ctx, schemaQuery).Scan(&migrated); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	if !migrated {
		return ErrSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
