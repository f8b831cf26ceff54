package fsmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docmcp/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTypeByExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/docs/a.json", want: "application/json"},
		{path: "/docs/page.html", want: "text/html"},
		{path: "/docs/A.PNG", want: "image/png"},
		{path: "/docs/data.zzqx", want: "application/zzqx"},
		{path: "/docs/data.ZZQX", want: "application/zzqx"},
		{path: "/docs/Makefile", want: "application/octet-stream"},
		{path: "/docs/trailing.", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeByExtension(tt.path))
		})
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.json")
	writeFile(t, path, `{"a":1}`)

	t.Run("default description", func(t *testing.T) {
		meta, err := Extract(path, "")
		require.NoError(t, err)

		assert.Equal(t, path, meta.Path)
		assert.Equal(t, "notes.json", meta.Name)
		assert.Equal(t, model.DefaultDescription, meta.Description)
		assert.Equal(t, "application/json", meta.FileType)
		assert.Equal(t, int64(7), meta.Size)
		assert.False(t, meta.CreatedAt.IsZero())
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("explicit description", func(t *testing.T) {
		meta, err := Extract(path, "team notes")
		require.NoError(t, err)
		assert.Equal(t, "team notes", meta.Description)
	})

	t.Run("missing file", func(t *testing.T) {
		meta, err := Extract(filepath.Join(dir, "missing.txt"), "")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, meta)
	})

	t.Run("does not modify the file", func(t *testing.T) {
		before, err := os.Stat(path)
		require.NoError(t, err)
		_, err = Extract(path, "")
		require.NoError(t, err)
		after, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime())
		assert.Equal(t, before.Size(), after.Size())
	})
}

func TestScan(t *testing.T) {
	t.Run("recurses into sub directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")
		writeFile(t, filepath.Join(dir, "sub", "b.json"), "{}")
		writeFile(t, filepath.Join(dir, "sub", "deeper", "c.md"), "# c")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

		files, err := Scan(dir, zap.NewNop())
		require.NoError(t, err)

		var names []string
		for _, f := range files {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"a.txt", "b.json", "c.md"}, names)
	})

	t.Run("unreadable entry is logged and skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "one.txt"), "1")
		writeFile(t, filepath.Join(dir, "two.txt"), "2")
		require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling")))

		core, logs := observer.New(zapcore.WarnLevel)
		files, err := Scan(dir, zap.New(core))

		require.NoError(t, err)
		assert.Len(t, files, 2)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, filepath.Join(dir, "dangling"), logs.All()[0].ContextMap()["path"])
	})

	t.Run("empty directory", func(t *testing.T) {
		files, err := Scan(t.TempDir(), zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Scan(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not a directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, path, "x")

		_, err := Scan(path, zap.NewNop())
		assert.ErrorIs(t, err, ErrNotADirectory)
	})
}

func TestReadJSONContent(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	writeFile(t, valid, `{"title":"x","tags":["a"]}`)
	content, err := ReadJSONContent(valid)
	require.NoError(t, err)
	assert.Equal(t, "x", content["title"])
	assert.Equal(t, []any{"a"}, content["tags"])

	broken := filepath.Join(dir, "broken.json")
	writeFile(t, broken, `{"title":`)
	_, err = ReadJSONContent(broken)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	array := filepath.Join(dir, "array.json")
	writeFile(t, array, `[1,2]`)
	_, err = ReadJSONContent(array)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = ReadJSONContent(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}
