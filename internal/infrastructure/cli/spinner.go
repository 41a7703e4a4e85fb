package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// spinner animates a status line on a terminal while the pipeline works.
type spinner struct {
	frames   []string
	interval time.Duration
	label    string
	writer   io.Writer

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func newSpinner(w io.Writer, label string) *spinner {
	return &spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		label:    label,
		writer:   w,
		stop:     make(chan struct{}),
	}
}

// startSpinner starts a spinner on w when w is a terminal and returns the
// function that stops it.
func startSpinner(w io.Writer, label string) func() {
	if !isTerminal(w) {
		return func() {}
	}
	s := newSpinner(w, label)
	s.start()
	return s.halt
}

func (s *spinner) start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for idx := 0; ; idx++ {
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[idx%len(s.frames)], s.label)
			select {
			case <-s.stop:
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *spinner) halt() {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
