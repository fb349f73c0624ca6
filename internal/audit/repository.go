// AngelaMos | 2026
// repository.go

package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/elyterrax/marketplace-api/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	List(ctx context.Context, params ListParams) ([]Entry, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO api_request_logs
			(id, user_id, endpoint, method, ip_address, user_agent,
			 status_code, duration_ms, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Endpoint,
		entry.Method,
		entry.IPAddress,
		entry.UserAgent,
		entry.StatusCode,
		entry.DurationMS,
		entry.RequestID,
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Entry, int, error) {
	params.Normalize()

	where := "TRUE"
	var args []any
	if params.UserID != "" {
		where = "user_id = $1"
		args = append(args, params.UserID)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM api_request_logs WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count request logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, endpoint, method, ip_address, user_agent,
		       status_code, duration_ms, request_id, created_at
		FROM api_request_logs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list request logs: %w", err)
	}

	return entries, total, nil
}
