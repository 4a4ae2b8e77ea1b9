package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesAreOrderedSQL(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.IsIncreasing(t, files)
	for _, f := range files {
		assert.True(t, strings.HasSuffix(f, ".sql"), f)
		content, err := migrationsFS.ReadFile("migrations/" + f)
		require.NoError(t, err)
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS")
	}
}
