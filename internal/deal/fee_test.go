// AngelaMos | 2026
// fee_test.go

package deal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/lead"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSuccessFee(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		rate    string
		minimum string
		want    string
	}{
		{"launch rate", "1000000", "5", "0", "50000"},
		{"growth rate", "1000000", "4", "0", "40000"},
		{"elite rate", "1000000", "3", "0", "30000"},
		{"investor pays nothing", "1000000", "0", "0", "0"},
		{"minimum floor applies", "10000", "3", "500", "500"},
		{"minimum below fee", "100000", "3", "500", "3000"},
		{"rounds to cents", "333.33", "3", "0", "10"},
		{"fractional cents", "1234.567", "4", "0", "49.38"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessFee(dec(tt.total), dec(tt.rate), dec(tt.minimum))
			assert.True(t, dec(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func lockedLead() *lead.Lead {
	return &lead.Lead{
		ID:                   "lead-1",
		RecipientTierLocked:  "growth",
		SuccessFeeRateLocked: dec("4"),
		CreatedAt:            time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewDealFromLeadUsesLockedRate(t *testing.T) {
	l := lockedLead()

	d, err := NewDealFromLead(l, NewDeal{
		DealType:   TypeCapitalRaise,
		TotalValue: dec("2500000"),
		MinimumFee: dec("1000"),
	})
	require.NoError(t, err)

	assert.Equal(t, "lead-1", d.LeadID)
	assert.Equal(t, "growth", d.LockedTier)
	assert.True(t, dec("4").Equal(d.SuccessFeeRateLocked))
	assert.Equal(t, l.CreatedAt, d.LockedAt)
	assert.Equal(t, DefaultCurrency, d.Currency)
	assert.Equal(t, StatusPending, d.Status)
	require.True(t, d.SuccessFeeCalculated.Valid)
	assert.True(t, dec("100000").Equal(d.SuccessFeeCalculated.Decimal))
}

func TestNewDealFromLeadTranches(t *testing.T) {
	fx := dec("1.1")

	d, err := NewDealFromLead(lockedLead(), NewDeal{
		DealType:   TypeAssetSale,
		TotalValue: dec("300"),
		Currency:   " usd ",
		Tranches: []NewTranche{
			{Amount: dec("100"), FXRateToEUR: &fx},
			{Amount: dec("200")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "USD", d.Currency)
	require.Len(t, d.Tranches, 2)
	assert.Equal(t, 1, d.Tranches[0].TrancheNumber)
	assert.Equal(t, 2, d.Tranches[1].TrancheNumber)
	assert.Equal(t, d.ID, d.Tranches[0].DealID)
	assert.True(t, dec("110").Equal(d.Tranches[0].AmountEURCached.Decimal))
	assert.False(t, d.Tranches[1].FXRateToEUR.Valid)
}

func TestNewDealFromLeadRejects(t *testing.T) {
	tests := []struct {
		name string
		in   NewDeal
	}{
		{"unknown type", NewDeal{DealType: "swap", TotalValue: dec("10")}},
		{"zero total", NewDeal{DealType: TypeAssetSale, TotalValue: dec("0")}},
		{"negative minimum", NewDeal{
			DealType:   TypeAssetSale,
			TotalValue: dec("10"),
			MinimumFee: dec("-1"),
		}},
		{"non-positive tranche", NewDeal{
			DealType:   TypeAssetSale,
			TotalValue: dec("10"),
			Tranches:   []NewTranche{{Amount: dec("0")}},
		}},
		{"tranches exceed total", NewDeal{
			DealType:   TypeAssetSale,
			TotalValue: dec("10"),
			Tranches:   []NewTranche{{Amount: dec("6")}, {Amount: dec("5")}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDealFromLead(lockedLead(), tt.in)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}
