package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/generation"
)

// Reporter provides progress feedback while diagrams are generated. A
// total <= 0 means the amount of work is unknown.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter when stderr is an interactive
// terminal, or a CIReporter in CI and when output is redirected.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" || !term.IsTerminal(int(os.Stderr.Fd())) {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar, or a spinner when the total is
// unknown.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	if total <= 0 {
		r.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Generating diagram"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		return
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Generating diagrams"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		if current > 0 {
			_ = r.bar.Set(current)
		} else {
			_ = r.bar.Add(0)
		}
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	Out   io.Writer
	total int
}

func (r *CIReporter) out() io.Writer {
	if r.Out == nil {
		return os.Stderr
	}
	return r.Out
}

func (r *CIReporter) Start(total int) {
	r.total = total
	if total > 0 {
		fmt.Fprintf(r.out(), "Generating %d diagrams\n", total)
		return
	}
	fmt.Fprintln(r.out(), "Generating diagram")
}

func (r *CIReporter) Update(current int, message string) {
	if r.total > 0 {
		fmt.Fprintf(r.out(), "[%d/%d] %s\n", current, r.total, message)
		return
	}
	fmt.Fprintln(r.out(), message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out(), "Diagram generation complete")
}

// StatusSink drives r from generation status changes: Generating starts an
// indeterminate report and a terminal status finishes it.
func StatusSink(r Reporter) generation.StatusSink {
	return generation.StatusFunc(func(s diagram.Status) {
		switch s {
		case diagram.StatusGenerating:
			r.Start(0)
			r.Update(0, "Waiting for the model")
		case diagram.StatusSucceeded, diagram.StatusFailed:
			r.Finish()
		}
	})
}
