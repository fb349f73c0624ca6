// AngelaMos | 2026
// entity.go

package deal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCapitalRaise   Type = "capital_raise"
	TypeAssetSale      Type = "asset_sale"
	TypeAgencyReferral Type = "agency_referral"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaid       Status = "paid"
	StatusDisputed   Status = "disputed"
)

// Deal is a closed transaction attributed to a lead. Rate and tier are
// copied from the lead, never recomputed from current tiers.
type Deal struct {
	ID                   string              `db:"id"`
	LeadID               string              `db:"lead_id"`
	DealType             Type                `db:"deal_type"`
	TotalValue           decimal.Decimal     `db:"total_value"`
	Currency             string              `db:"currency"`
	SuccessFeeRateLocked decimal.Decimal     `db:"success_fee_rate_locked"`
	SuccessFeeCalculated decimal.NullDecimal `db:"success_fee_calculated"`
	SuccessFeeMinimum    decimal.Decimal     `db:"success_fee_minimum"`
	LockedTier           string              `db:"locked_tier"`
	LockedAt             time.Time           `db:"locked_at"`
	Status               Status              `db:"status"`
	CompletedAt          *time.Time          `db:"completed_at"`
	PaymentReceivedAt    *time.Time          `db:"payment_received_at"`
	Disputed             bool                `db:"disputed"`
	CreatedAt            time.Time           `db:"created_at"`
	UpdatedAt            time.Time           `db:"updated_at"`

	Tranches []Tranche `db:"-"`
}

type Tranche struct {
	ID              string              `db:"id"`
	DealID          string              `db:"deal_id"`
	TrancheNumber   int                 `db:"tranche_number"`
	Amount          decimal.Decimal     `db:"amount"`
	Currency        string              `db:"currency"`
	FXRateToEUR     decimal.NullDecimal `db:"fx_rate_to_eur"`
	AmountEURCached decimal.NullDecimal `db:"amount_eur_cached"`
	PaymentDate     *time.Time          `db:"payment_date"`
	CreatedAt       time.Time           `db:"created_at"`
}
