// AngelaMos | 2026
// migrate_test.go

package core

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"010_deals.sql":   {Data: []byte("SELECT 1")},
		"001_init.sql":    {Data: []byte("SELECT 1")},
		"README.md":       {Data: []byte("notes")},
		"002_index.SQL":   {Data: []byte("SELECT 1")},
		"archive/old.sql": {Data: []byte("SELECT 1")},
	}

	names, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_index.SQL", "010_deals.sql"}, names)
}
