package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Signal is how the user tells us a manual login has finished.
type Signal interface {
	Interactive() bool
	Wait(ctx context.Context) error
}

// StdinSignal waits for ENTER on the terminal.
type StdinSignal struct {
	In  *os.File
	Out io.Writer
}

func (s StdinSignal) in() *os.File {
	if s.In != nil {
		return s.In
	}
	return os.Stdin
}

func (s StdinSignal) Interactive() bool {
	fd := s.in().Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (s StdinSignal) Wait(ctx context.Context) error {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, "Log in using the browser window, then press ENTER here to continue...")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(s.in()).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && err != io.EOF {
			return err
		}
		return nil
	}
}

// ChanSignal completes when C is closed or receives a value.
type ChanSignal struct {
	C              <-chan struct{}
	NonInteractive bool
}

func (c ChanSignal) Interactive() bool { return !c.NonInteractive }

func (c ChanSignal) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.C:
		return nil
	}
}
