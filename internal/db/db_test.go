package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	var count int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM files").Scan(&count))
	assert.Zero(t, count)
	assert.Equal(t, ":memory:", d.Path())
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	// Running migrate again should not fail.
	require.NoError(t, d.migrate())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "files.db")

	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Exec(`INSERT INTO files (path, content) VALUES ('index.html', '<html></html>')`)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
