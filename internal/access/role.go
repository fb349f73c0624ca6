// AngelaMos | 2026
// role.go

package access

import (
	"fmt"
	"strings"

	"github.com/elyterrax/marketplace-api/internal/core"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleInvestor  Role = "investor"
	RoleAgency    Role = "agency"
	RoleBuyer     Role = "buyer"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleDeveloper, RoleInvestor, RoleAgency, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// CanInitiateLead reports whether the role may open a first contact.
func (r Role) CanInitiateLead() bool {
	return r == RoleInvestor || r == RoleBuyer
}

// CanReceiveLead reports whether the role may be contacted.
func (r Role) CanReceiveLead() bool {
	return r == RoleDeveloper || r == RoleAgency
}

type DeveloperTier string

const (
	TierLaunch DeveloperTier = "launch"
	TierGrowth DeveloperTier = "growth"
	TierElite  DeveloperTier = "elite"
)

type InvestorTier string

const (
	TierExplorer       InvestorTier = "explorer"
	TierInsider        InvestorTier = "insider"
	TierCapitalPartner InvestorTier = "capital_partner"
)

// normalizeTier lowercases and folds "capital partner" into
// "capital_partner"; stored rows carry both spellings.
func normalizeTier(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

func ParseDeveloperTier(s string) (DeveloperTier, bool) {
	t := DeveloperTier(normalizeTier(s))
	switch t {
	case TierLaunch, TierGrowth, TierElite:
		return t, true
	}
	return "", false
}

func ParseInvestorTier(s string) (InvestorTier, bool) {
	t := InvestorTier(normalizeTier(s))
	switch t {
	case TierExplorer, TierInsider, TierCapitalPartner:
		return t, true
	}
	return "", false
}

// DisplayName renders the tier the way it appears in user-facing messages.
func (t DeveloperTier) DisplayName() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// NormalizeTierForRole validates a tier literal against the role that owns it
// and returns its canonical spelling. Roles without tiers accept only "".
func NormalizeTierForRole(role Role, tier string) (string, error) {
	if strings.TrimSpace(tier) == "" {
		return "", nil
	}

	switch role {
	case RoleDeveloper:
		if t, ok := ParseDeveloperTier(tier); ok {
			return string(t), nil
		}
	case RoleInvestor:
		if t, ok := ParseInvestorTier(tier); ok {
			return string(t), nil
		}
	}

	return "", fmt.Errorf(
		"tier %q is not valid for role %s: %w",
		tier, role, core.ErrInvalidInput,
	)
}

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionExpired SubscriptionStatus = "expired"
	SubscriptionNone    SubscriptionStatus = "none"
)

func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	st := SubscriptionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case SubscriptionActive, SubscriptionTrial, SubscriptionExpired, SubscriptionNone:
		return st, nil
	}
	return "", fmt.Errorf("parse subscription status %q: %w", s, core.ErrInvalidInput)
}

// IsActive is true for paid and trial subscriptions.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionActive || s == SubscriptionTrial
}
