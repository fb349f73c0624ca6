// AngelaMos | 2026
// fee.go

package deal

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/lead"
)

const DefaultCurrency = "EUR"

var hundred = decimal.NewFromInt(100)

// SuccessFee is total × rate% with a floor of minimum, rounded to cents.
func SuccessFee(total, ratePercent, minimum decimal.Decimal) decimal.Decimal {
	fee := total.Mul(ratePercent).Div(hundred)
	if fee.LessThan(minimum) {
		fee = minimum
	}
	return fee.Round(2)
}

type NewTranche struct {
	Amount      decimal.Decimal
	FXRateToEUR *decimal.Decimal
}

type NewDeal struct {
	DealType   Type
	TotalValue decimal.Decimal
	Currency   string
	MinimumFee decimal.Decimal
	Tranches   []NewTranche
}

// NewDealFromLead builds a deal carrying the lead's locked fee rate and
// recipient tier.
func NewDealFromLead(l *lead.Lead, in NewDeal) (*Deal, error) {
	switch in.DealType {
	case TypeCapitalRaise, TypeAssetSale, TypeAgencyReferral:
	default:
		return nil, core.BadRequestError("invalid deal_type")
	}
	if !in.TotalValue.IsPositive() {
		return nil, core.BadRequestError("total_value must be greater than 0")
	}
	if in.MinimumFee.IsNegative() {
		return nil, core.BadRequestError("minimum_fee cannot be negative")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	d := &Deal{
		ID:                   uuid.New().String(),
		LeadID:               l.ID,
		DealType:             in.DealType,
		TotalValue:           in.TotalValue,
		Currency:             currency,
		SuccessFeeRateLocked: l.SuccessFeeRateLocked,
		SuccessFeeMinimum:    in.MinimumFee,
		LockedTier:           l.RecipientTierLocked,
		LockedAt:             l.CreatedAt,
		Status:               StatusPending,
	}
	d.SuccessFeeCalculated = decimal.NewNullDecimal(
		SuccessFee(in.TotalValue, d.SuccessFeeRateLocked, in.MinimumFee),
	)

	sum := decimal.Zero
	for i, t := range in.Tranches {
		if !t.Amount.IsPositive() {
			return nil, core.BadRequestError("tranche amount must be greater than 0")
		}
		sum = sum.Add(t.Amount)

		tr := Tranche{
			ID:            uuid.New().String(),
			DealID:        d.ID,
			TrancheNumber: i + 1,
			Amount:        t.Amount,
			Currency:      currency,
		}
		if t.FXRateToEUR != nil {
			tr.FXRateToEUR = decimal.NewNullDecimal(*t.FXRateToEUR)
			tr.AmountEURCached = decimal.NewNullDecimal(
				t.Amount.Mul(*t.FXRateToEUR).Round(2),
			)
		}
		d.Tranches = append(d.Tranches, tr)
	}
	if sum.GreaterThan(in.TotalValue) {
		return nil, core.BadRequestError("tranches exceed total_value")
	}

	return d, nil
}
