// AngelaMos | 2026
// visibility.go

package access

import (
	"slices"
)

// Viewer is the authoritative identity of the caller for one request,
// loaded from the user store rather than from token claims.
// A nil *Viewer is an anonymous caller.
type Viewer struct {
	ID                 string
	Role               Role
	Tier               string
	SubscriptionStatus SubscriptionStatus
	Verified           bool
}

func (v *Viewer) IsAdmin() bool {
	return v != nil && v.Role == RoleAdmin
}

func (v *Viewer) Is(id string) bool {
	return v != nil && id != "" && v.ID == id
}

func (v *Viewer) HasActiveSubscription() bool {
	return v != nil && v.SubscriptionStatus.IsActive()
}

// ProjectLevels resolves the project access levels visible to viewer for a
// project owned by ownerID. Pass "" for ownerID when evaluating a search.
//
// Any developer sees every project level, not only the owner. Documents do
// not share this rule.
func ProjectLevels(viewer *Viewer, ownerID string) []AccessLevel {
	switch {
	case viewer == nil:
		return []AccessLevel{LevelPublic}
	case viewer.Is(ownerID), viewer.IsAdmin():
		return slices.Clone(allProjectLevels)
	case viewer.Role == RoleInvestor:
		return InvestorProjectLevels(viewer.Tier)
	case viewer.Role == RoleDeveloper:
		return slices.Clone(allProjectLevels)
	}
	return []AccessLevel{LevelPublic}
}

// DocumentLevels resolves document access levels. ownerID is the developer
// of the document's project.
func DocumentLevels(viewer *Viewer, ownerID string) []DocumentAccessLevel {
	switch {
	case viewer == nil:
		return []DocumentAccessLevel{DocPublic}
	case viewer.Is(ownerID), viewer.IsAdmin():
		return slices.Clone(allDocumentLevels)
	case viewer.Role == RoleInvestor:
		return InvestorDocumentLevels(viewer.Tier)
	}
	return []DocumentAccessLevel{DocPublic}
}

func CanAccessProject(viewer *Viewer, ownerID string, level AccessLevel) bool {
	return contains(ProjectLevels(viewer, ownerID), level)
}

func CanAccessDocument(
	viewer *Viewer,
	ownerID string,
	level DocumentAccessLevel,
) bool {
	return contains(DocumentLevels(viewer, ownerID), level)
}
