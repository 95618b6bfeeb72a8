package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add contracts table")
	require.NoError(t, err)

	assert.Contains(t, filepath.Base(mf.UpPath), "add_contracts_table.up.sql")
	assert.Contains(t, filepath.Base(mf.DownPath), "add_contracts_table.down.sql")

	_, err = os.Stat(mf.UpPath)
	assert.NoError(t, err)
	_, err = os.Stat(mf.DownPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty directory", func(t *testing.T) {
		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("missing directory", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(dir, "missing"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists up migrations once", func(t *testing.T) {
		_, err := CreateMigration(dir, "first")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Contains(t, migrations[0], "first")
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add contracts table", "add_contracts_table"},
		{"weird--name  here", "weird_name_here"},
		{"Trailing space ", "trailing_space"},
		{"UPPER123", "upper123"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), tt.in)
	}
}
