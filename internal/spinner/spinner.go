package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders an animated progress indicator on a single line.
type Spinner struct {
	w        io.Writer
	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	message  string
	maxWidth int
}

// Start begins rendering message on w. Call Update to change the message
// and Stop to halt the animation and clear the line.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:        w,
		done:     make(chan struct{}),
		cleared:  make(chan struct{}),
		message:  message,
		maxWidth: len(message),
	}
	go s.loop()
	return s
}

// Update replaces the message shown next to the spinner frame.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	if len(message) > s.maxWidth {
		s.maxWidth = len(message)
	}
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) loop() {
	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			width := s.maxWidth
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width+2)) //nolint:errcheck
			close(s.cleared)
			return
		case <-time.After(80 * time.Millisecond):
			s.mu.Lock()
			msg := s.message
			pad := s.maxWidth - len(msg)
			s.mu.Unlock()
			if pad < 0 {
				pad = 0
			}
			fmt.Fprintf(s.w, "\r%s %s%s", frames[i%len(frames)], msg, strings.Repeat(" ", pad)) //nolint:errcheck
			i++
		}
	}
}
