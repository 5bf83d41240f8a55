package main

import (
	"testing"

	"github.com/cobolstruct/cobolstruct/internal/version"
)

func TestVersion(t *testing.T) {
	if version.Short() == "" {
		t.Error("version should not be empty")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"restructure", "check", "graph", "init", "version"} {
		if !names[want] {
			t.Errorf("rootCmd should register subcommand %q", want)
		}
	}
}
