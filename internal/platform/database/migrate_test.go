package database

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medgate/migrations"
)

func TestMigrationSourcesReadsEmbeddedSchema(t *testing.T) {
	sources, err := MigrationSources(migrations.FS)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "0001_principals.sql", sources[0].Name)
	assert.Equal(t, "0002_audit_events.sql", sources[1].Name)
	assert.Contains(t, sources[0].SQL, "CREATE TABLE IF NOT EXISTS principals")
	assert.Contains(t, sources[1].SQL, "CREATE TABLE IF NOT EXISTS audit_events")

	// Re-applying on every boot must be safe.
	for _, src := range sources {
		for _, line := range strings.Split(src.SQL, "\n") {
			if strings.HasPrefix(line, "CREATE") {
				assert.Contains(t, line, "IF NOT EXISTS", src.Name)
			}
		}
	}
}

func TestMigrationSourcesOrdersLexically(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_second.sql": {Data: []byte("SELECT 2;")},
		"0001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("not a migration")},
	}
	sources, err := MigrationSources(fsys)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "0001_first.sql", sources[0].Name)
	assert.Equal(t, "0002_second.sql", sources[1].Name)
}
