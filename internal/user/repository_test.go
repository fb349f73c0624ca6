// AngelaMos | 2026
// repository_test.go

package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFilter(t *testing.T) {
	f := userFilter(ListUsersParams{Search: "50%_off", Role: "investor", Tier: "insider"})

	assert.Equal(t,
		"deleted_at IS NULL AND (email ILIKE $1 OR full_name ILIKE $1) AND role = $2 AND tier = $3",
		f.where(),
	)
	assert.Equal(t, []any{`%50\%\_off%`, "investor", "insider"}, f.args)

	assert.Equal(t, "$4", f.arg(20))
}

func TestUserFilterEmpty(t *testing.T) {
	f := userFilter(ListUsersParams{})
	assert.Equal(t, liveUser, f.where())
	assert.Empty(t, f.args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
}
