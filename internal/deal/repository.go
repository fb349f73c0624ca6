// AngelaMos | 2026
// repository.go

package deal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/elyterrax/marketplace-api/internal/core"
)

const dealColumns = `
	id, lead_id, deal_type, total_value, currency,
	success_fee_rate_locked, success_fee_calculated, success_fee_minimum,
	locked_tier, locked_at, status, completed_at, payment_received_at,
	disputed, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, d *Deal) error
	GetByID(ctx context.Context, id string) (*Deal, error)
	ListByLead(ctx context.Context, leadID string) ([]Deal, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the deal and its tranches in one transaction.
func (r *repository) Create(ctx context.Context, d *Deal) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO deals (
				id, lead_id, deal_type, total_value, currency,
				success_fee_rate_locked, success_fee_calculated,
				success_fee_minimum, locked_tier, locked_at, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING created_at, updated_at`,
			d.ID,
			d.LeadID,
			d.DealType,
			d.TotalValue,
			d.Currency,
			d.SuccessFeeRateLocked,
			d.SuccessFeeCalculated,
			d.SuccessFeeMinimum,
			d.LockedTier,
			d.LockedAt,
			d.Status,
		).Scan(&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create deal: %w", err)
		}

		for i := range d.Tranches {
			t := &d.Tranches[i]
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO deal_tranches (
					id, deal_id, tranche_number, amount, currency,
					fx_rate_to_eur, amount_eur_cached, payment_date
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING created_at`,
				t.ID,
				t.DealID,
				t.TrancheNumber,
				t.Amount,
				t.Currency,
				t.FXRateToEUR,
				t.AmountEURCached,
				t.PaymentDate,
			).Scan(&t.CreatedAt)
			if err != nil {
				return fmt.Errorf("create deal tranche %d: %w", t.TrancheNumber, err)
			}
		}

		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id string) (*Deal, error) {
	var d Deal
	err := r.db.GetContext(ctx, &d, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get deal: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}

	tranches := []Tranche{}
	err = r.db.SelectContext(ctx, &tranches, `
		SELECT id, deal_id, tranche_number, amount, currency,
		       fx_rate_to_eur, amount_eur_cached, payment_date, created_at
		FROM deal_tranches
		WHERE deal_id = $1
		ORDER BY tranche_number`, id)
	if err != nil {
		return nil, fmt.Errorf("list deal tranches: %w", err)
	}
	d.Tranches = tranches

	return &d, nil
}

func (r *repository) ListByLead(ctx context.Context, leadID string) ([]Deal, error) {
	deals := []Deal{}
	err := r.db.SelectContext(ctx, &deals, `SELECT `+dealColumns+`
		FROM deals
		WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return deals, nil
}
