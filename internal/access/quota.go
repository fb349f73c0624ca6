// AngelaMos | 2026
// quota.go

package access

import (
	"context"
	"fmt"

	"github.com/elyterrax/marketplace-api/internal/core"
)

// ActiveProjectCounter counts a developer's non-archived projects.
type ActiveProjectCounter interface {
	CountActiveByDeveloper(ctx context.Context, developerID string) (int, error)
}

// CheckQuota denies creation once the developer holds as many active
// projects as the tier allows. Callers serialize count-then-insert per
// developer; see project.repository.LockDeveloper.
func CheckQuota(
	ctx context.Context,
	counter ActiveProjectCounter,
	developer *Viewer,
) error {
	if developer == nil {
		return core.UnauthorizedError("")
	}

	quota := QuotaFor(developer.Tier)
	if quota.Unlimited {
		return nil
	}

	count, err := counter.CountActiveByDeveloper(ctx, developer.ID)
	if err != nil {
		return fmt.Errorf("count active projects: %w", err)
	}

	if count >= quota.Limit {
		return core.QuotaExceededError(QuotaMessage(quota))
	}

	return nil
}

func QuotaMessage(q Quota) string {
	return fmt.Sprintf(
		"Project quota exceeded. Your %s tier allows %d projects. Upgrade to create more.",
		q.Tier.DisplayName(),
		q.Limit,
	)
}
