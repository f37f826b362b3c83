// Package progress renders batch progress on stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for batch processing. A disabled tracker
// accepts every call and draws nothing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
	ticks atomic.Int64
}

// Enabled reports whether stderr is a terminal worth drawing on.
func Enabled() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewTracker creates a bar on stderr when enabled.
func NewTracker(label string, total int, enabled bool) *Tracker {
	return NewTrackerTo(os.Stderr, label, total, enabled)
}

// NewTrackerTo creates a bar writing to w when enabled.
func NewTrackerTo(w io.Writer, label string, total int, enabled bool) *Tracker {
	t := &Tracker{out: w, label: label}
	if !enabled {
		return t
	}
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return t
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.ticks.Add(1)
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
}

// Current returns the number of ticks so far.
func (t *Tracker) Current() int64 {
	return t.ticks.Load()
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.clear()
}

// FinishError clears the bar and reports the failure.
func (t *Tracker) FinishError(err error) {
	t.clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}

func (t *Tracker) clear() {
	if t.bar == nil {
		return
	}
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}
