// Package config loads and merges on-disk configuration (.cobolstruct.toml
// or .cobolstruct.yaml) with CLI flags and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FlattenConfig tunes the Flattener's duplicate-vs-goto cost model: the cost weights are configurable rather than hardcoded.
type FlattenConfig struct {
	FixedOverhead int `toml:"fixed_overhead" yaml:"fixed_overhead" mapstructure:"fixed_overhead"`
	DuplicationWeight int `toml:"duplication_weight" yaml:"duplication_weight" mapstructure:"duplication_weight"`
}

// AnalysisConfig tunes the Statement Graph Builder's diagnostic policy.
type AnalysisConfig struct {
	StrictCrossSectionGoto bool `toml:"strict_cross_section_goto" yaml:"strict_cross_section_goto" mapstructure:"strict_cross_section_goto"`
	Recursive bool `toml:"recursive" yaml:"recursive" mapstructure:"recursive"`
	IncludePatterns []string `toml:"include_patterns" yaml:"include_patterns" mapstructure:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

// OutputConfig tunes default rendering behavior.
type OutputConfig struct {
	Format string `toml:"format" yaml:"format" mapstructure:"format"`
	Directory string `toml:"directory" yaml:"directory" mapstructure:"directory"`
	Debug bool `toml:"debug" yaml:"debug" mapstructure:"debug"`
}

// Config is the fully-resolved, in-memory configuration for one run.
type Config struct {
	Flatten FlattenConfig `toml:"flatten" yaml:"flatten" mapstructure:"flatten"`
	Analysis AnalysisConfig `toml:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Output OutputConfig `toml:"output" yaml:"output" mapstructure:"output"`
}

// DefaultConfig matches the pipeline's own package-level defaults.
func DefaultConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{FixedOverhead: 3, DuplicationWeight: 1},
		Analysis: AnalysisConfig{
			StrictCrossSectionGoto: false,
			Recursive: true,
			IncludePatterns: []string{"*.cbl", "*.cob", "*.CBL", "*.COB"},
		},
		Output: OutputConfig{Format: "text"},
	}
}

// LoadFromFile reads a .toml or .yaml/.yml config file into a Config.
// Format is chosen by the file extension; an unknown extension is an error
// rather than a silent guess, so a typo'd config path fails loudly.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing toml config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing yaml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q (expected .toml, .yaml or .yml)", ext)
	}
	return cfg, nil
}

// LoadWithEnv builds on LoadFromFile by layering in COBOLSTRUCT_*
// environment variable overrides via viper, so CI pipelines can tweak the
// flattener's cost weights without touching a checked-in config file.
func LoadWithEnv(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("COBOLSTRUCT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if v.IsSet("flatten.fixed_overhead") {
		cfg.Flatten.FixedOverhead = cast.ToInt(v.Get("flatten.fixed_overhead"))
	}
	if v.IsSet("flatten.duplication_weight") {
		cfg.Flatten.DuplicationWeight = cast.ToInt(v.Get("flatten.duplication_weight"))
	}
	if v.IsSet("analysis.strict_cross_section_goto") {
		cfg.Analysis.StrictCrossSectionGoto = cast.ToBool(v.Get("analysis.strict_cross_section_goto"))
	}
	return cfg, nil
}

// FindDefaultConfig looks for a .cobolstruct.toml or .cobolstruct.yaml in dir.
func FindDefaultConfig(dir string) (string, bool) {
	for _, name := range []string{".cobolstruct.toml", ".cobolstruct.yaml", ".cobolstruct.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
