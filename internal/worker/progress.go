package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress tracks and displays tile fetch progress.
type Progress struct {
	startTime time.Time
	output    io.Writer
	stats     Stats
	mu        sync.RWMutex
	enabled   bool
}

// NewProgress creates a new progress tracker.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		stats:     Stats{Total: total},
		startTime: time.Now(),
		output:    os.Stderr,
		enabled:   enabled,
	}
}

// Update records the latest batch snapshot.
func (p *Progress) Update(s Stats) {
	p.mu.Lock()
	p.stats = s
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

func (p *Progress) snapshot() (Stats, time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats, time.Since(p.startTime)
}

// Print displays the current progress to output.
func (p *Progress) Print() {
	s, elapsed := p.snapshot()

	var rate float64
	var eta time.Duration
	if s.Completed > 0 {
		rate = float64(s.Completed) / elapsed.Seconds()
		if rate > 0 {
			eta = time.Duration(float64(s.Total-s.Completed)/rate) * time.Second
		}
	}

	barWidth := 30
	filled := 0
	if s.Total > 0 {
		filled = s.Completed * barWidth / s.Total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("\r[%s] %d/%d tiles, %s", bar, s.Completed, s.Total, humanize.Bytes(uint64(s.Bytes)))
	if s.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", s.Failed)
	}
	line += fmt.Sprintf(" - %.1f tiles/sec", rate)
	if eta > 0 && s.Completed < s.Total {
		line += fmt.Sprintf(" - ETA: %s", formatDuration(eta))
	}
	if s.Completed == s.Total {
		line += fmt.Sprintf(" - Done in %s", formatDuration(elapsed))
	}

	// Pad to clear previous line content
	line += "          "

	fmt.Fprint(p.output, line)
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.output)
	}
}

// Summary returns a one-line summary of the completed work.
func (p *Progress) Summary() string {
	s, elapsed := p.snapshot()

	var rate float64
	if elapsed.Seconds() > 0 {
		rate = float64(s.Completed) / elapsed.Seconds()
	}

	return fmt.Sprintf("Fetched %d/%d tiles (%d failed, %s) in %s (%.1f tiles/sec)",
		s.Completed-s.Failed, s.Total, s.Failed, humanize.Bytes(uint64(s.Bytes)), formatDuration(elapsed), rate)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
