package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// generateTimestampedFileName builds an output filename with a timestamp
// suffix, so repeated runs against the same target don't clobber each other.
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// resolveOutputDirectory returns the directory reports are written to when
// no explicit --output path is given, creating it if necessary.
func resolveOutputDirectory() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".cobolstruct", "reports"), nil
	}
	dir := filepath.Join(cwd, ".cobolstruct", "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return dir, nil
}

// getTargetPathFromArgs extracts the first argument as target path, or "."
// when none was given.
func getTargetPathFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
