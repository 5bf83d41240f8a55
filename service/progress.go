package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporterImpl implements domain.ProgressReporter with a single
// schollz/progressbar bar tracking files processed out of the batch total.
// Falls back to silent no-ops when the writer isn't an interactive terminal,
// so CI logs don't fill up with carriage-return spam.
type ProgressReporterImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	bar         *progressbar.ProgressBar
	interactive bool
}

// NewProgressReporter creates a ProgressReporterImpl writing to stderr.
func NewProgressReporter() *ProgressReporterImpl {
	return &ProgressReporterImpl{
		writer:      os.Stderr,
		interactive: isInteractive(os.Stderr),
	}
}

// NewProgressReporterWithWriter creates a ProgressReporterImpl writing to an
// explicit writer, for tests that want to assert on the rendered output.
func NewProgressReporterWithWriter(w io.Writer, interactive bool) *ProgressReporterImpl {
	return &ProgressReporterImpl{writer: w, interactive: interactive}
}

// StartProgress begins tracking a batch of total files.
func (p *ProgressReporterImpl) StartProgress(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.interactive {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("restructuring"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.writer)
		}),
	)
}

// UpdateProgress advances the bar to processed out of total, relabeling it
// with the file currently being structured.
func (p *ProgressReporterImpl) UpdateProgress(currentFile string, processed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("restructuring %s", currentFile))
	_ = p.bar.Set(processed)
}

// FinishProgress completes the bar, flushing its terminal line.
func (p *ProgressReporterImpl) FinishProgress() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

func isInteractive(f *os.File) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
