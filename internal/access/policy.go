// AngelaMos | 2026
// policy.go

package access

import (
	"slices"

	"github.com/shopspring/decimal"
)

var investorProjectLevels = map[InvestorTier][]AccessLevel{
	TierExplorer: {LevelPublic},
	TierInsider:  {LevelPublic, LevelVerifiedOnly},
	TierCapitalPartner: {
		LevelPublic,
		LevelVerifiedOnly,
		LevelPreLaunch,
		LevelInvestorOnly,
	},
}

var investorDocumentLevels = map[InvestorTier][]DocumentAccessLevel{
	TierExplorer:       {DocPublic},
	TierInsider:        {DocPublic, DocVerifiedOnly},
	TierCapitalPartner: {DocPublic, DocVerifiedOnly, DocInvestorOnly},
}

// Quota is the number of non-archived projects a developer may hold.
type Quota struct {
	Tier      DeveloperTier
	Limit     int
	Unlimited bool
}

var developerQuotas = map[DeveloperTier]Quota{
	TierLaunch: {Tier: TierLaunch, Limit: 3},
	TierGrowth: {Tier: TierGrowth, Limit: 10},
	TierElite:  {Tier: TierElite, Unlimited: true},
}

var (
	defaultFeeRate = decimal.NewFromInt(5)

	developerFeeRates = map[DeveloperTier]decimal.Decimal{
		TierLaunch: decimal.NewFromInt(5),
		TierGrowth: decimal.NewFromInt(4),
		TierElite:  decimal.NewFromInt(3),
	}
)

// QuotaFor returns the project quota for a developer tier literal.
// Missing or unknown tiers get the launch quota.
func QuotaFor(tier string) Quota {
	t, ok := ParseDeveloperTier(tier)
	if !ok {
		t = TierLaunch
	}
	return developerQuotas[t]
}

// SuccessFeeRate is the platform fee percentage owed by a lead recipient
// at the given tier. Investor tiers never pay; anything unrecognized pays 5.
func SuccessFeeRate(recipientTier string) decimal.Decimal {
	if t, ok := ParseDeveloperTier(recipientTier); ok {
		return developerFeeRates[t]
	}
	if _, ok := ParseInvestorTier(recipientTier); ok {
		return decimal.Zero
	}
	return defaultFeeRate
}

// InvestorProjectLevels looks up the project table; unknown tiers read as
// explorer.
func InvestorProjectLevels(tier string) []AccessLevel {
	t, ok := ParseInvestorTier(tier)
	if !ok {
		t = TierExplorer
	}
	return slices.Clone(investorProjectLevels[t])
}

func InvestorDocumentLevels(tier string) []DocumentAccessLevel {
	t, ok := ParseInvestorTier(tier)
	if !ok {
		t = TierExplorer
	}
	return slices.Clone(investorDocumentLevels[t])
}
