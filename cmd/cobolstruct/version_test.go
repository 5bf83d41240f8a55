package main

import (
	"bytes"
	"testing"
)

func TestVersionCommandInterface(t *testing.T) {
	cobraCmd := NewVersionCommand().CreateCobraCommand()
	if cobraCmd.Use != "version" {
		t.Errorf("Use = %q, want %q", cobraCmd.Use, "version")
	}

	var out bytes.Buffer
	cobraCmd.SetOut(&out)
	cobraCmd.SetErr(&out)
	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("version command should not fail: %v", err)
	}
	if out.String() == "" {
		t.Error("version command should produce output")
	}
}

func TestVersionCommandShortFlag(t *testing.T) {
	cobraCmd := NewVersionCommand().CreateCobraCommand()
	var out bytes.Buffer
	cobraCmd.SetOut(&out)
	cobraCmd.SetErr(&out)
	cobraCmd.SetArgs([]string{"--short"})

	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("version --short should not fail: %v", err)
	}
	if out.String() == "" {
		t.Error("version --short command should produce output")
	}
}
