// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/config"
)

func cheapParams(t *testing.T, iterations uint32) {
	t.Helper()
	prev := *currentParams.Load()
	SetPasswordParams(config.PasswordConfig{
		MemoryKiB:   8 * 1024,
		Iterations:  iterations,
		Parallelism: 1,
	})
	t.Cleanup(func() { currentParams.Store(&prev) })
}

func TestHashAndVerifyPassword(t *testing.T) {
	cheapParams(t, 1)

	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))

	ok, err := VerifyPassword("s3cret-passphrase", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestRehashAfterCostChange(t *testing.T) {
	cheapParams(t, 1)
	old, err := HashPassword("pw")
	require.NoError(t, err)

	ok, upgraded, err := VerifyPasswordWithRehash("pw", old)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, upgraded)

	cheapParams(t, 2)
	ok, upgraded, err = VerifyPasswordWithRehash("pw", old)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, upgraded, "t=2")

	ok, upgraded, err = VerifyPasswordWithRehash("nope", old)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, upgraded)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	cheapParams(t, 1)
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	ok, _, err := VerifyPasswordTimingSafe("pw", &hash)
	require.NoError(t, err)
	assert.True(t, ok)

	empty := ""
	for _, h := range []*string{nil, &empty} {
		ok, _, err = VerifyPasswordTimingSafe("pw", h)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestDecodeHashRejectsGarbage(t *testing.T) {
	for _, h := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!$a2V5",
	} {
		_, err := VerifyPassword("pw", h)
		assert.ErrorIs(t, err, errMalformedHash, h)
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, HashToken(a), HashToken(b))
}
