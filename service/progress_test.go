package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporterNonInteractiveIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporterWithWriter(&buf, false)

	p.StartProgress(3)
	p.UpdateProgress("a.cbl", 1, 3)
	p.FinishProgress()

	assert.Empty(t, buf.String())
}

func TestProgressReporterInteractiveRendersBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporterWithWriter(&buf, true)

	p.StartProgress(2)
	p.UpdateProgress("a.cbl", 1, 2)
	p.UpdateProgress("b.cbl", 2, 2)
	p.FinishProgress()

	assert.NotEmpty(t, buf.String())
}

func TestProgressReporterUpdateBeforeStartIsNoop(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressReporterWithWriter(&buf, true)

	p.UpdateProgress("a.cbl", 1, 1)
	p.FinishProgress()

	assert.Empty(t, buf.String())
}
