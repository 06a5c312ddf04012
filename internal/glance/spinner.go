package glance

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerFrameIntervalConstant = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var spinnerMessageStyle = lipgloss.NewStyle().Faint(true)

// Spinner renders a progress indicator on the error stream while metadata is
// being fetched. A disabled spinner turns every method into a no-op so
// callers never branch on interactivity.
type Spinner struct {
	writer  io.Writer
	enabled bool
	mutex   sync.Mutex
	message string
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner constructs a spinner writing to the provided stream.
func NewSpinner(writer io.Writer, enabled bool) *Spinner {
	return &Spinner{writer: writer, enabled: enabled && writer != nil}
}

// Start begins the spinner animation with the provided message.
func (spinner *Spinner) Start(message string) {
	if spinner == nil || !spinner.enabled {
		return
	}

	spinner.mutex.Lock()
	spinner.message = message
	spinner.done = make(chan struct{})
	spinner.stopped = make(chan struct{})
	spinner.mutex.Unlock()

	go spinner.animate()
}

// Stop halts the animation and clears the spinner line.
func (spinner *Spinner) Stop() {
	if spinner == nil || !spinner.enabled {
		return
	}

	spinner.mutex.Lock()
	done := spinner.done
	stopped := spinner.stopped
	spinner.mutex.Unlock()
	if done == nil {
		return
	}

	close(done)
	<-stopped
	spinner.clearLine()

	spinner.mutex.Lock()
	spinner.done = nil
	spinner.stopped = nil
	spinner.mutex.Unlock()
}

func (spinner *Spinner) animate() {
	spinner.mutex.Lock()
	done := spinner.done
	stopped := spinner.stopped
	spinner.mutex.Unlock()
	defer close(stopped)

	ticker := time.NewTicker(spinnerFrameIntervalConstant)
	defer ticker.Stop()

	frameIndex := 0
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			spinner.mutex.Lock()
			frame := spinnerFrames[frameIndex%len(spinnerFrames)]
			fmt.Fprintf(spinner.writer, "\r%s %s", frame, spinnerMessageStyle.Render(spinner.message))
			spinner.mutex.Unlock()
			frameIndex++
		}
	}
}

func (spinner *Spinner) clearLine() {
	spinner.mutex.Lock()
	defer spinner.mutex.Unlock()
	fmt.Fprintf(spinner.writer, "\r%s\r", strings.Repeat(" ", len(spinner.message)+4))
}
