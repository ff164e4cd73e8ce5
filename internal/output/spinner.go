package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Spinner animates a one-line status on stderr while brew is queried.
// On a non-terminal writer it stays silent so piped reports remain clean.
type Spinner struct {
	message   string
	running   bool
	chars     []string
	mu        sync.Mutex
	writer    io.Writer
	done      chan struct{}
	timeout   time.Duration
	startTime time.Time
	width     int
}

// NewSpinner creates a stopped spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
		writer:  os.Stderr,
		done:    make(chan struct{}),
	}
}

// WithTimeout shows the time left before timeout next to the message.
// It must be called before Start.
func (s *Spinner) WithTimeout(timeout time.Duration) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	return s
}

// SetWriter sets the output writer (useful for testing).
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. It is a no-op on a non-TTY writer.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.startTime = time.Now()

	if !writerIsTTY(s.writer) {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		idx := 0
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				if !s.running {
					s.mu.Unlock()
					return
				}
				line := s.chars[idx] + "  " + s.formatMessage()
				if w := runewidth.StringWidth(line); w > s.width {
					s.width = w
				}
				fmt.Fprintf(s.writer, "\r%s", line)
				idx = (idx + 1) % len(s.chars)
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}()
}

// formatMessage must be called with lock held.
func (s *Spinner) formatMessage() string {
	if s.timeout <= 0 {
		return s.message
	}
	remaining := s.timeout - time.Since(s.startTime)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%s (%ds remaining)", s.message, int(remaining.Seconds()))
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.done)

	if s.width > 0 {
		fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// UpdateMessage updates the spinner message while it's running.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}
