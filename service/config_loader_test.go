package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cobolstruct/cobolstruct/domain"
)

func TestMergeConfigHeuristicWithoutExplicitFlags(t *testing.T) {
	l := NewConfigurationLoader()
	base := &domain.RestructureRequest{OutputFormat: domain.OutputFormatText, FixedOverhead: 3, DuplicationWeight: 1}
	override := &domain.RestructureRequest{FixedOverhead: 0, Debug: true}

	merged := l.MergeConfig(base, override)
	assert.Equal(t, domain.OutputFormatText, merged.OutputFormat)
	assert.Equal(t, 3, merged.FixedOverhead, "a zero override should fall back to base under the heuristic")
	assert.True(t, merged.Debug)
}

func TestMergeConfigExplicitFlagsHonorsZeroValue(t *testing.T) {
	l := NewConfigurationLoader()
	base := &domain.RestructureRequest{FixedOverhead: 3, DuplicationWeight: 1}
	override := &domain.RestructureRequest{
		FixedOverhead: 0,
		ExplicitFlags: map[string]bool{"fixed-overhead": true},
	}

	merged := l.MergeConfig(base, override)
	assert.Equal(t, 0, merged.FixedOverhead, "an explicitly-set zero value must win over the base")
	assert.Equal(t, 1, merged.DuplicationWeight, "an unset flag must still fall back to base")
}

func TestMergeConfigNilBaseOrOverride(t *testing.T) {
	l := NewConfigurationLoader()
	override := &domain.RestructureRequest{OutputFormat: domain.OutputFormatJSON}
	assert.Same(t, override, l.MergeConfig(nil, override))

	base := &domain.RestructureRequest{OutputFormat: domain.OutputFormatText}
	assert.Same(t, base, l.MergeConfig(base, nil))
}

func TestLoadDefaultConfigTranslatesFromPackageDefaults(t *testing.T) {
	l := NewConfigurationLoader()
	req := l.LoadDefaultConfig()
	assert.Equal(t, domain.OutputFormat("text"), req.OutputFormat)
	assert.Equal(t, 3, req.FixedOverhead)
	assert.Equal(t, 1, req.DuplicationWeight)
	assert.True(t, req.Recursive)
}
