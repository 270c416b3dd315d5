package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransferRepo implements ports.TransferRepository.
// Rows are append-only; the schema rejects UPDATE and DELETE.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

const transferColumns = `id, sender_id, receiver_id, amount, status, reason, created_at`

// Create inserts a transfer record outside any transfer unit.
func (r *TransferRepo) Create(ctx context.Context, t *domain.TransferRecord) error {
	query := `INSERT INTO transfers (sender_id, receiver_id, amount, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		t.SenderID, t.ReceiverID, t.Amount, t.Status, t.Reason, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// GetByID fetches a transfer record by its UUID.
func (r *TransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	t := &domain.TransferRecord{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Status, &t.Reason, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer by id: %w", err)
	}
	return t, nil
}

// ListByAccount returns one page of the account's transfers, newest first,
// and the total number of matching records.
func (r *TransferRepo) ListByAccount(ctx context.Context, params ports.TransferListParams) ([]domain.TransferRecord, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("(sender_id = $%d OR receiver_id = $%d)", argIdx, argIdx))
	args = append(args, params.AccountID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transfers %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	// Fetch page
	dataQuery := fmt.Sprintf(`SELECT %s FROM transfers %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, transferColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		t := domain.TransferRecord{}
		err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.Status, &t.Reason, &t.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer row: %w", err)
		}
		records = append(records, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transfer rows: %w", err)
	}
	return records, total, nil
}
