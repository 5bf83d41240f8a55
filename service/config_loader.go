package service

import (
	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/config"
)

// ConfigurationLoaderImpl implements domain.ConfigurationLoader over
// internal/config, translating between its on-disk Config shape and the
// domain's RestructureRequest.
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a ConfigurationLoaderImpl.
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig reads a .toml/.yaml config file, layering in COBOLSTRUCT_*
// environment overrides, and translates it into a RestructureRequest.
func (l *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.RestructureRequest, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, domain.NewConfigError("loading configuration", err)
	}
	return requestFromConfig(cfg), nil
}

// LoadDefaultConfig is used when no config path is given: it loads a
// .cobolstruct.toml/.yaml/.yml from the current directory if one exists,
// else internal/config's package defaults, layering in COBOLSTRUCT_*
// environment overrides either way. A file that fails to load falls back
// to the package defaults.
func (l *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.RestructureRequest {
	path, _ := config.FindDefaultConfig(".")
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return requestFromConfig(cfg)
}

// MergeConfig layers override onto base. When override.ExplicitFlags is set
// (populated by a CLI layer that tracked which flags the user actually
// passed, via internal/config's flag-merge helpers), a flag wins only if
// it's in that set, so a flag explicitly set to its zero value (e.g.
// --duplication-weight 0) is honored rather than silently falling back to
// base. Without ExplicitFlags, a cruder zero-value heuristic applies: a
// non-zero/non-empty override field wins.
func (l *ConfigurationLoaderImpl) MergeConfig(base, override *domain.RestructureRequest) *domain.RestructureRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	merged := *base
	flags := override.ExplicitFlags

	if flags != nil {
		merged.OutputFormat = domain.OutputFormat(config.MergeString(string(base.OutputFormat), string(override.OutputFormat), "format", flags))
		merged.OutputPath = config.MergeString(base.OutputPath, override.OutputPath, "output", flags)
		merged.ConfigPath = config.MergeString(base.ConfigPath, override.ConfigPath, "config", flags)
		merged.Recursive = config.MergeBool(base.Recursive, override.Recursive, "recursive", flags)
		merged.IncludePatterns = config.MergeStringSlice(base.IncludePatterns, override.IncludePatterns, "include", flags)
		merged.ExcludePatterns = config.MergeStringSlice(base.ExcludePatterns, override.ExcludePatterns, "exclude", flags)
		merged.StrictCrossSectionGoto = config.MergeBool(base.StrictCrossSectionGoto, override.StrictCrossSectionGoto, "strict-cross-section-goto", flags)
		merged.Debug = config.MergeBool(base.Debug, override.Debug, "debug", flags)
		merged.FixedOverhead = config.MergeInt(base.FixedOverhead, override.FixedOverhead, "fixed-overhead", flags)
		merged.DuplicationWeight = config.MergeInt(base.DuplicationWeight, override.DuplicationWeight, "duplication-weight", flags)
		merged.GraphStage = domain.GraphStage(config.MergeString(string(base.GraphStage), string(override.GraphStage), "stage", flags))
		merged.Concurrent = config.MergeBool(base.Concurrent, override.Concurrent, "concurrent", flags)
	} else {
		if override.OutputFormat != "" {
			merged.OutputFormat = override.OutputFormat
		}
		if override.OutputPath != "" {
			merged.OutputPath = override.OutputPath
		}
		if override.ConfigPath != "" {
			merged.ConfigPath = override.ConfigPath
		}
		if override.Recursive {
			merged.Recursive = true
		}
		if len(override.IncludePatterns) > 0 {
			merged.IncludePatterns = override.IncludePatterns
		}
		if len(override.ExcludePatterns) > 0 {
			merged.ExcludePatterns = override.ExcludePatterns
		}
		if override.StrictCrossSectionGoto {
			merged.StrictCrossSectionGoto = true
		}
		if override.Debug {
			merged.Debug = true
		}
		if override.FixedOverhead > 0 {
			merged.FixedOverhead = override.FixedOverhead
		}
		if override.DuplicationWeight > 0 {
			merged.DuplicationWeight = override.DuplicationWeight
		}
		if override.GraphStage != "" {
			merged.GraphStage = override.GraphStage
		}
		if override.Concurrent {
			merged.Concurrent = true
		}
	}

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	return &merged
}

func requestFromConfig(cfg *config.Config) *domain.RestructureRequest {
	return &domain.RestructureRequest{
		OutputFormat:           domain.OutputFormat(cfg.Output.Format),
		Recursive:              cfg.Analysis.Recursive,
		IncludePatterns:        cfg.Analysis.IncludePatterns,
		ExcludePatterns:        cfg.Analysis.ExcludePatterns,
		StrictCrossSectionGoto: cfg.Analysis.StrictCrossSectionGoto,
		Debug:                  cfg.Output.Debug,
		FixedOverhead:          cfg.Flatten.FixedOverhead,
		DuplicationWeight:      cfg.Flatten.DuplicationWeight,
	}
}
