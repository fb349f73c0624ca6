// AngelaMos | 2026
// dto.go

package deal

import (
	"time"

	"github.com/shopspring/decimal"
)

type TrancheRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	FXRateToEUR *decimal.Decimal `json:"fx_rate_to_eur,omitempty"`
}

type RecordDealRequest struct {
	LeadID     string           `json:"lead_id"     validate:"required,uuid"`
	DealType   string           `json:"deal_type"   validate:"required,oneof=capital_raise asset_sale agency_referral"`
	TotalValue decimal.Decimal  `json:"total_value"`
	Currency   string           `json:"currency"    validate:"omitempty,len=3,alpha"`
	MinimumFee decimal.Decimal  `json:"minimum_fee"`
	Tranches   []TrancheRequest `json:"tranches"    validate:"max=50"`
}

func (r RecordDealRequest) toNewDeal() NewDeal {
	in := NewDeal{
		DealType:   Type(r.DealType),
		TotalValue: r.TotalValue,
		Currency:   r.Currency,
		MinimumFee: r.MinimumFee,
	}
	for _, t := range r.Tranches {
		in.Tranches = append(in.Tranches, NewTranche{
			Amount:      t.Amount,
			FXRateToEUR: t.FXRateToEUR,
		})
	}
	return in
}

type TrancheResponse struct {
	TrancheNumber   int                 `json:"tranche_number"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	FXRateToEUR     decimal.NullDecimal `json:"fx_rate_to_eur"`
	AmountEURCached decimal.NullDecimal `json:"amount_eur_cached"`
	PaymentDate     *time.Time          `json:"payment_date,omitempty"`
}

type DealResponse struct {
	ID                   string              `json:"id"`
	LeadID               string              `json:"lead_id"`
	DealType             Type                `json:"deal_type"`
	TotalValue           decimal.Decimal     `json:"total_value"`
	Currency             string              `json:"currency"`
	SuccessFeeRateLocked decimal.Decimal     `json:"success_fee_rate_locked"`
	SuccessFeeCalculated decimal.NullDecimal `json:"success_fee_calculated"`
	SuccessFeeMinimum    decimal.Decimal     `json:"success_fee_minimum"`
	LockedTier           string              `json:"locked_tier"`
	LockedAt             time.Time           `json:"locked_at"`
	Status               Status              `json:"status"`
	Tranches             []TrancheResponse   `json:"tranches"`
	CreatedAt            time.Time           `json:"created_at"`
}

type DealListResponse struct {
	Items []DealResponse `json:"items"`
	Total int            `json:"total"`
}

func ToDealResponse(d *Deal) DealResponse {
	resp := DealResponse{
		ID:                   d.ID,
		LeadID:               d.LeadID,
		DealType:             d.DealType,
		TotalValue:           d.TotalValue,
		Currency:             d.Currency,
		SuccessFeeRateLocked: d.SuccessFeeRateLocked,
		SuccessFeeCalculated: d.SuccessFeeCalculated,
		SuccessFeeMinimum:    d.SuccessFeeMinimum,
		LockedTier:           d.LockedTier,
		LockedAt:             d.LockedAt,
		Status:               d.Status,
		Tranches:             make([]TrancheResponse, 0, len(d.Tranches)),
		CreatedAt:            d.CreatedAt,
	}
	for _, t := range d.Tranches {
		resp.Tranches = append(resp.Tranches, TrancheResponse{
			TrancheNumber:   t.TrancheNumber,
			Amount:          t.Amount,
			Currency:        t.Currency,
			FXRateToEUR:     t.FXRateToEUR,
			AmountEURCached: t.AmountEURCached,
			PaymentDate:     t.PaymentDate,
		})
	}
	return resp
}

func ToDealListResponse(deals []Deal) DealListResponse {
	items := make([]DealResponse, len(deals))
	for i := range deals {
		items[i] = ToDealResponse(&deals[i])
	}
	return DealListResponse{Items: items, Total: len(items)}
}
