// AngelaMos | 2026
// repository.go

package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elyterrax/marketplace-api/internal/core"
)

const leadColumns = `
	l.id, l.initiator_id, l.recipient_id, l.project_id, l.listing_id,
	l.channel, l.status, l.origin, l.first_contact_ip,
	l.first_contact_user_agent, l.initiator_tier_locked,
	l.recipient_tier_locked, l.success_fee_rate_locked,
	l.created_at, l.updated_at,
	iu.full_name AS initiator_name, iu.email AS initiator_email,
	ru.full_name AS recipient_name, ru.email AS recipient_email,
	p.title AS project_title`

const leadFrom = `
	FROM leads l
	LEFT JOIN users iu ON iu.id = l.initiator_id
	LEFT JOIN users ru ON ru.id = l.recipient_id
	LEFT JOIN projects p ON p.id = l.project_id`

type Repository interface {
	InTx(ctx context.Context, fn func(Repository) error) error

	Exists(ctx context.Context, key Key) (bool, error)
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	ListForUser(ctx context.Context, userID string) ([]Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, leadID string) ([]Message, error)
}

type repository struct {
	root *sqlx.DB
	db   core.DBTX
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{root: db, db: db}
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	if r.root == nil {
		return fn(r)
	}
	return core.InTx(ctx, r.root, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

// Exists matches the uniqueness tuple with IS NOT DISTINCT FROM so a nil
// project or listing only matches another nil.
func (r *repository) Exists(ctx context.Context, key Key) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM leads
			WHERE initiator_id = $1
			  AND recipient_id = $2
			  AND project_id IS NOT DISTINCT FROM $3
			  AND listing_id IS NOT DISTINCT FROM $4
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query,
		key.InitiatorID,
		key.RecipientID,
		key.ProjectID,
		key.ListingID,
	)
	if err != nil {
		return false, fmt.Errorf("check lead exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (
			id, initiator_id, recipient_id, project_id, listing_id, channel,
			status, origin, first_contact_ip, first_contact_user_agent,
			initiator_tier_locked, recipient_tier_locked,
			success_fee_rate_locked
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		lead.ID,
		lead.InitiatorID,
		lead.RecipientID,
		lead.ProjectID,
		lead.ListingID,
		lead.Channel,
		lead.Status,
		lead.Origin,
		lead.FirstContactIP,
		lead.FirstContactUserAgent,
		lead.InitiatorTierLocked,
		lead.RecipientTierLocked,
		lead.SuccessFeeRateLocked,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create lead: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create lead: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `SELECT ` + leadColumns + leadFrom + `
		WHERE l.id = $1`

	var lead Lead
	err := r.db.GetContext(ctx, &lead, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lead: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}

	return &lead, nil
}

func (r *repository) ListForUser(ctx context.Context, userID string) ([]Lead, error) {
	query := `SELECT ` + leadColumns + leadFrom + `
		WHERE l.initiator_id = $1 OR l.recipient_id = $1
		ORDER BY l.created_at DESC`

	leads := []Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, userID); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	return leads, nil
}

// UpdateStatus only ever touches status. Locked tier and fee columns have
// no write path after insert.
func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE leads
		SET status = $2, updated_at = NOW()
		WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update lead status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CreateMessage(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO messages (
			id, lead_id, sender_id, content, ip_address, user_agent
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING sent_at, is_read`

	err := r.db.QueryRowxContext(ctx, query,
		msg.ID,
		msg.LeadID,
		msg.SenderID,
		msg.Content,
		msg.IPAddress,
		msg.UserAgent,
	).Scan(&msg.SentAt, &msg.IsRead)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *repository) ListMessages(ctx context.Context, leadID string) ([]Message, error) {
	query := `
		SELECT m.id, m.lead_id, m.sender_id, m.content, m.is_read,
		       m.ip_address, m.user_agent, m.sent_at,
		       u.full_name AS sender_name
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.lead_id = $1
		ORDER BY m.sent_at ASC`

	msgs := []Message{}
	if err := r.db.SelectContext(ctx, &msgs, query, leadID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return msgs, nil
}
