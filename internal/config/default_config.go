package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
)

// defaultConfigTmpl is the embedded default configuration template, rendered
// with the package's own DefaultConfig values so `cobolstruct init` never
// drifts out of sync with the code's actual defaults.
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

type defaultConfigValues struct {
	FixedOverhead          int
	DuplicationWeight      int
	StrictCrossSectionGoto bool
	Recursive              bool
	IncludePatterns        []string
	ExcludePatterns        []string
	OutputFormat           string
	OutputDirectory        string
	Debug                  bool
}

func newDefaultConfigValues() defaultConfigValues {
	cfg := DefaultConfig()
	dir := cfg.Output.Directory
	if dir == "" {
		dir = ".cobolstruct/reports"
	}
	return defaultConfigValues{
		FixedOverhead:          cfg.Flatten.FixedOverhead,
		DuplicationWeight:      cfg.Flatten.DuplicationWeight,
		StrictCrossSectionGoto: cfg.Analysis.StrictCrossSectionGoto,
		Recursive:              cfg.Analysis.Recursive,
		IncludePatterns:        cfg.Analysis.IncludePatterns,
		ExcludePatterns:        cfg.Analysis.ExcludePatterns,
		OutputFormat:           cfg.Output.Format,
		OutputDirectory:        dir,
		Debug:                  cfg.Output.Debug,
	}
}

// GenerateDefaultConfigTOML renders the default config template.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("parsing default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("rendering default config template: %w", err)
	}
	return buf.String(), nil
}
