package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad_OrdersByVersionAndSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V2__projects.sql", "CREATE TABLE b (id INT);")
	writeFile(t, dir, "V1__users.sql", "CREATE TABLE a (id INT);")
	writeFile(t, dir, "README.md", "notes")

	migs, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	require.Equal(t, int64(1), migs[0].Version)
	require.Equal(t, "users", migs[0].Name)
	require.Equal(t, int64(2), migs[1].Version)
	require.NotEqual(t, migs[0].Checksum, migs[1].Checksum)
}

func TestLoad_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;")
	writeFile(t, dir, "V1__b.sql", "SELECT 2;")

	_, err := Load(dir)
	require.ErrorContains(t, err, "duplicate migration version")
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__empty.sql", "   \n")

	_, err := Load(dir)
	require.ErrorContains(t, err, "empty migration file")
}

func TestLoad_MissingDir(t *testing.T) {
	migs, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, migs)
}

func TestLoad_RepositoryMigrations(t *testing.T) {
	migs, err := Load(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	require.Equal(t, int64(1), migs[0].Version)
}
