package scanner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"shapecluster/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// ProgressTracker counts loading results and shows a spinner line while
// images are decoded
type ProgressTracker struct {
	processed int
	errors    int
	total     int
	mu        sync.Mutex

	out         io.Writer
	quiet       bool
	ticker      *time.Ticker
	done        chan struct{}
	displayDone chan struct{}
	resultsDone chan struct{}
	startTime   time.Time
}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// NewProgressTracker starts consuming resultsChan. The caller closes
// resultsChan once every result is sent and then calls Stop.
func NewProgressTracker(total int, resultsChan <-chan ProcessImageResult, out io.Writer, quiet bool) *ProgressTracker {
	tracker := &ProgressTracker{
		total:       total,
		out:         out,
		quiet:       quiet,
		done:        make(chan struct{}),
		displayDone: make(chan struct{}),
		resultsDone: make(chan struct{}),
		startTime:   time.Now(),
	}

	go tracker.processResults(resultsChan)

	if quiet {
		close(tracker.displayDone)
	} else {
		tracker.ticker = time.NewTicker(100 * time.Millisecond)
		go tracker.displayProgress()
	}

	return tracker
}

// displayProgress redraws the spinner line on every tick
func (p *ProgressTracker) displayProgress() {
	defer close(p.displayDone)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			s, _ = s.Update(spinner.TickMsg{})
			processed, errors := p.Counts()
			line := fmt.Sprintf("\r%s Loading images %d/%d", s.View(), processed, p.total)
			if errors > 0 {
				line += errorStyle.Render(fmt.Sprintf(" (errors: %d)", errors))
			}
			fmt.Fprint(p.out, line)
		}
	}
}

// processResults updates the tracker state based on loading results
func (p *ProgressTracker) processResults(resultsChan <-chan ProcessImageResult) {
	defer close(p.resultsDone)

	for result := range resultsChan {
		p.mu.Lock()
		p.processed++
		if !result.Success {
			p.errors++
		}
		p.mu.Unlock()

		if result.Success {
			logging.LogImageLoaded(result.Path, true, "")
		} else if result.Error != nil {
			logging.LogImageLoaded(result.Path, false, result.Error.Error())
		}
	}
}

// Counts returns the number of processed results and how many of them failed
func (p *ProgressTracker) Counts() (processed, errors int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.errors
}

// Stop waits for all results, ends the display and prints a summary line
func (p *ProgressTracker) Stop() {
	<-p.resultsDone
	if p.ticker != nil {
		p.ticker.Stop()
	}
	close(p.done)
	<-p.displayDone

	if !p.quiet {
		processed, errors := p.Counts()
		fmt.Fprintf(p.out, "\r✓ Loaded %d/%d images in %v", processed-errors, p.total, time.Since(p.startTime).Round(time.Millisecond))
		if errors > 0 {
			fmt.Fprint(p.out, errorStyle.Render(fmt.Sprintf(" (%d failed)", errors)))
		}
		fmt.Fprintln(p.out)
	}
}
