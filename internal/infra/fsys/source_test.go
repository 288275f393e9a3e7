package fsys

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDirectorySource_FilesSortedWithSlashPaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zeta.md", "last")
	writeFile(t, root, "guides/setup.md", "setup guide")
	writeFile(t, root, "alpha.md", "first")

	source := NewDirectorySource(root, testLogger())
	files, err := source.Files(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.Equal(t, "alpha.md", files[0].Name)
	assert.Equal(t, "guides/setup.md", files[1].Name)
	assert.Equal(t, "zeta.md", files[2].Name)
	assert.Equal(t, "setup guide", files[1].Content)
}

func TestDirectorySource_SkipsDotDirsAndDotFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.md", "visible")
	writeFile(t, root, ".git/config", "hidden")
	writeFile(t, root, ".env", "secret")

	source := NewDirectorySource(root, testLogger())
	files, err := source.Files(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "doc.md", files[0].Name)
}

func TestDirectorySource_HonorsSyncignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IgnoreFileName, "drafts/\n*.tmp\n")
	writeFile(t, root, "doc.md", "keep")
	writeFile(t, root, "notes.tmp", "ignore")
	writeFile(t, root, "drafts/wip.md", "ignore")

	source := NewDirectorySource(root, testLogger())
	files, err := source.Files(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "doc.md", files[0].Name)
}

func TestDirectorySource_SkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "doc.md", "text")
	writeFile(t, root, "image.png", "\x89PNG\x0d\x0a\x1a\x0a\x00\x00binary")

	source := NewDirectorySource(root, testLogger())
	files, err := source.Files(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "doc.md", files[0].Name)
}

func TestDirectorySource_MissingDirectory(t *testing.T) {
	source := NewDirectorySource(filepath.Join(t.TempDir(), "missing"), testLogger())
	_, err := source.Files(context.Background())
	assert.Error(t, err)
}
