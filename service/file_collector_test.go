package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestIsValidCobolFile(t *testing.T) {
	c := NewFileCollector()
	cases := map[string]bool{
		"a.cbl": true, "a.COB": true, "a.cpy": true, "a.txt": false, "a": false,
	}
	for path, want := range cases {
		assert.Equal(t, want, c.IsValidCobolFile(path), path)
	}
}

func TestCollectFilesSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cbl")
	writeFile(t, path, "PROCEDURE DIVISION.")

	c := NewFileCollector()
	files, err := c.CollectFiles([]string{path}, false, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestCollectFilesDirectoryRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cbl"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.cbl"), "x")
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "x")
	writeFile(t, filepath.Join(dir, ".git", "d.cbl"), "x")

	c := NewFileCollector()
	files, err := c.CollectFiles([]string{dir}, true, nil, nil)
	assert.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCollectFilesNonRecursiveSkipsSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cbl"), "x")
	writeFile(t, filepath.Join(dir, "sub", "b.cbl"), "x")

	c := NewFileCollector()
	files, err := c.CollectFiles([]string{dir}, false, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cbl")}, files)
}

func TestCollectFilesExcludePattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cbl"), "x")
	writeFile(t, filepath.Join(dir, "a_test.cbl"), "x")

	c := NewFileCollector()
	files, err := c.CollectFiles([]string{dir}, true, nil, []string{"*_test.cbl"})
	assert.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cbl")}, files)
}

func TestCollectFilesMissingPath(t *testing.T) {
	c := NewFileCollector()
	_, err := c.CollectFiles([]string{"/no/such/path"}, false, nil, nil)
	assert.Error(t, err)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.cbl")
	writeFile(t, path, "x")

	c := NewFileCollector()
	ok, err := c.FileExists(path)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.FileExists(filepath.Join(dir, "missing.cbl"))
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.FileExists(dir)
	assert.NoError(t, err)
	assert.False(t, ok, "a directory is not a valid file")
}
