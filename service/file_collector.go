package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cobolstruct/cobolstruct/domain"
)

var skipDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true, "node_modules": true, "build": true, "dist": true,
}

var cobolExtensions = map[string]bool{
	".cbl": true, ".cob": true, ".cpy": true,
}

// FileCollector implements domain.FileReader against the local filesystem,
// using doublestar's `**` glob matching for include/exclude patterns.
type FileCollector struct{}

// NewFileCollector creates a FileCollector.
func NewFileCollector() *FileCollector { return &FileCollector{} }

// CollectFiles walks paths (files or directories) and returns every matching
// COBOL source file.
func (c *FileCollector) CollectFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		if info.IsDir() {
			dirFiles, err := c.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
			continue
		}
		if c.IsValidCobolFile(path) && c.shouldInclude(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (c *FileCollector) collectFromDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string
	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && (!recursive || skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.IsValidCobolFile(path) && c.shouldInclude(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

func (c *FileCollector) shouldInclude(path string, includePatterns, excludePatterns []string) bool {
	for _, p := range excludePatterns {
		if matchesGlob(p, path) {
			return false
		}
	}
	if len(includePatterns) == 0 {
		return true
	}
	for _, p := range includePatterns {
		if matchesGlob(p, path) {
			return true
		}
	}
	return false
}

func matchesGlob(pattern, path string) bool {
	if ok, _ := doublestar.Match(pattern, filepath.Base(path)); ok {
		return true
	}
	ok, _ := doublestar.Match(pattern, filepath.ToSlash(path))
	return ok
}

// ReadFile reads a source file's bytes.
func (c *FileCollector) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	return data, nil
}

// IsValidCobolFile reports whether path's extension names a COBOL source.
func (c *FileCollector) IsValidCobolFile(path string) bool {
	return cobolExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileExists reports whether path exists and is a regular file.
func (c *FileCollector) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
