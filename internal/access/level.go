// AngelaMos | 2026
// level.go

package access

import (
	"fmt"

	"github.com/elyterrax/marketplace-api/internal/core"
)

// AccessLevel tags a project. Documents use DocumentAccessLevel, which has
// no pre_launch value.
type AccessLevel string

const (
	LevelPublic       AccessLevel = "public"
	LevelVerifiedOnly AccessLevel = "verified_only"
	LevelPreLaunch    AccessLevel = "pre_launch"
	LevelInvestorOnly AccessLevel = "investor_only"
)

var allProjectLevels = []AccessLevel{
	LevelPublic,
	LevelVerifiedOnly,
	LevelPreLaunch,
	LevelInvestorOnly,
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	for _, l := range allProjectLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("parse access level %q: %w", s, core.ErrInvalidInput)
}

type DocumentAccessLevel string

const (
	DocPublic       DocumentAccessLevel = "public"
	DocVerifiedOnly DocumentAccessLevel = "verified_only"
	DocInvestorOnly DocumentAccessLevel = "investor_only"
)

var allDocumentLevels = []DocumentAccessLevel{
	DocPublic,
	DocVerifiedOnly,
	DocInvestorOnly,
}

func ParseDocumentAccessLevel(s string) (DocumentAccessLevel, error) {
	for _, l := range allDocumentLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf(
		"parse document access level %q: %w",
		s, core.ErrInvalidInput,
	)
}

// Strings flattens a level set for use as a SQL ANY($n) argument.
func Strings[T ~string](levels []T) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = string(l)
	}
	return out
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
