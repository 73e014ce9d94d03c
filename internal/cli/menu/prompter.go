package menu

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/utils/console"
)

// ErrInterrupted is returned by Ask when the context is cancelled while
// waiting for input (Ctrl+C).
var ErrInterrupted = errors.New("interrupted")

// Prompter reads answers line by line and writes prompts through its
// embedded console.Printer.
//
// Input is read on a separate goroutine so that a blocked read never stops
// Ask from noticing a cancelled context.
type Prompter struct {
	*console.Printer

	lineCh <-chan string
	errCh  <-chan error
	done   chan struct{}
	err    error
}

// NewPrompter starts reading lines from in. Call Close when finished.
func NewPrompter(in io.Reader, p *console.Printer) *Prompter {
	lineCh := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lineCh <- strings.TrimRight(line, "\r\n"):
				case <-done:
					return
				}
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	return &Prompter{Printer: p, lineCh: lineCh, errCh: errCh, done: done}
}

// Ask prints label and waits for one line of input, returned without its
// line terminator. Surrounding spaces are kept; callers trim what they
// need to.
//
// At end of input Ask returns io.EOF (or the read error), and keeps
// returning it on later calls.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.Printf("%s", label)

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case line := <-p.lineCh:
		return line, nil
	case err := <-p.errCh:
		p.err = err
		return "", err
	}
}

// Close releases the reading goroutine if it is waiting to hand over a
// line. A goroutine blocked inside Read on a terminal is left to exit with
// the process.
func (p *Prompter) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
