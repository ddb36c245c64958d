package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devhub/internal/domain/picture"

	"github.com/stretchr/testify/require"
)

func TestStorage_SaveDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir, "http://localhost:8080/")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "profile-1.png", "image/png", strings.NewReader("png-bytes"), 9))

	b, err := os.ReadFile(filepath.Join(dir, "profile-1.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(b))
	require.Equal(t, "http://localhost:8080/uploads/profiles/profile-1.png", s.URL("profile-1.png"))

	require.NoError(t, s.Delete(ctx, "profile-1.png"))
	_, err = os.Stat(filepath.Join(dir, "profile-1.png"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(ctx, "profile-1.png"), "deleting a missing file is not an error")
}

func TestStorage_RejectsPathTraversal(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "a/b.png", "", ".hidden"} {
		err := s.Save(context.Background(), name, "image/png", strings.NewReader("x"), 1)
		require.ErrorIs(t, err, picture.ErrInvalidName, name)
	}
}

func TestStorage_ShortWrite(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	require.NoError(t, err)

	err = s.Save(context.Background(), "p.png", "image/png", strings.NewReader("abc"), 10)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStorage_URLEmptyName(t *testing.T) {
	s, err := New(t.TempDir(), "http://x")
	require.NoError(t, err)
	require.Empty(t, s.URL(""))
}
