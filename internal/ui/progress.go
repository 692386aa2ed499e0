package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar shows progress through a known number of steps, such as
// benchmark cases or seed users. Output goes to UI.Status.
type ProgressBar struct {
	ui      *UI
	bar     progress.Model
	label   string
	total   int64
	current int64
	detail  string
	start   time.Time
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar.
func (u *UI) NewProgressBar(label string, total int64) *ProgressBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	return &ProgressBar{
		ui:    u,
		bar:   bar,
		label: label,
		total: total,
		start: time.Now(),
	}
}

// Update sets the current progress value.
func (p *ProgressBar) Update(current int64) {
	p.mu.Lock()
	p.current = current
	p.mu.Unlock()

	p.render()
}

// Step sets the current value together with a short description of the
// step in flight, e.g. the case being measured.
func (p *ProgressBar) Step(current int64, detail string) {
	p.mu.Lock()
	p.current = current
	p.detail = detail
	p.mu.Unlock()

	p.render()
}

func (p *ProgressBar) render() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ui.shouldStyle() {
		// one line per step keeps logs readable
		if p.detail != "" {
			fmt.Fprintf(p.ui.Status, "[%d/%d] %s\n", p.current+1, p.total, p.detail)
		}
		return
	}

	pct := 0.0
	if p.total > 0 {
		pct = min(float64(p.current)/float64(p.total), 1)
	}

	labelStyle := lipgloss.NewStyle().Width(12)
	countStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	fmt.Fprintf(p.ui.Status, "\r\033[K  %s %s %s %s",
		labelStyle.Render(p.label),
		p.bar.ViewAs(pct),
		countStyle.Render(fmt.Sprintf("%d/%d", p.current, p.total)),
		p.detail,
	)
}

// Complete finishes the progress bar with a success indicator.
func (p *ProgressBar) Complete() {
	p.mu.Lock()
	total := p.total
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.mu.Unlock()

	if !p.ui.shouldStyle() {
		fmt.Fprintf(p.ui.Status, "%s: %d/%d done in %s\n", p.label, total, total, elapsed)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(12)

	fmt.Fprintf(p.ui.Status, "\r\033[K  %s %s %s\n",
		StyleSuccess.Render(SymbolSuccess),
		labelStyle.Render(p.label),
		StyleSuccess.Render(fmt.Sprintf("%d/%d complete in %s", total, total, elapsed)),
	)
}

// Fail finishes the progress bar with an error indicator.
func (p *ProgressBar) Fail(err error) {
	if !p.ui.shouldStyle() {
		fmt.Fprintf(p.ui.Status, "%s: FAILED: %v\n", p.label, err)
		return
	}

	labelStyle := lipgloss.NewStyle().Width(12)

	fmt.Fprintf(p.ui.Status, "\r\033[K  %s %s %s\n",
		StyleError.Render(SymbolError),
		labelStyle.Render(p.label),
		StyleError.Render(err.Error()),
	)
}
