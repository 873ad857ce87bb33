// Package terminal owns the process's controlling terminal: scoped raw mode,
// the non-blocking flag on the input descriptor and the window geometry.
//
// At most one RawMode is live at a time. Acquire it with EnterRaw and release
// it with a deferred Release; Release restores the saved mode exactly once.
package terminal

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

var (
	// ErrTerminal marks a failure to query or set terminal attributes.
	// No raw-mode session can continue after it.
	ErrTerminal = errors.New("terminal attributes unavailable")

	// ErrRawActive is returned by EnterRaw while another RawMode is live.
	ErrRawActive = errors.New("raw mode already active")
)

// Terminal is the real terminal: an input and an output descriptor.
type Terminal struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int

	defaultCols int
	defaultRows int

	mu     sync.Mutex
	active *RawMode
}

// New wraps in and out. defaultCols and defaultRows are reported by Size
// when the output is not a terminal.
func New(in, out *os.File, defaultCols, defaultRows int) *Terminal {
	return &Terminal{
		in:          in,
		out:         out,
		inFd:        int(in.Fd()),
		outFd:       int(out.Fd()),
		defaultCols: defaultCols,
		defaultRows: defaultRows,
	}
}

// In returns the input file.
func (t *Terminal) In() *os.File { return t.in }

// Out returns the output file.
func (t *Terminal) Out() *os.File { return t.out }

// InFd returns the input descriptor.
func (t *Terminal) InFd() int { return t.inFd }

// OutFd returns the output descriptor.
func (t *Terminal) OutFd() int { return t.outFd }

// IsTerminal reports whether the input is a terminal.
func (t *Terminal) IsTerminal() bool { return term.IsTerminal(t.inFd) }

// EnterRaw puts the input terminal into raw mode and returns the guard that
// restores the previous mode.
func (t *Terminal) EnterRaw() (*RawMode, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return nil, ErrRawActive
	}

	state, err := term.MakeRaw(t.inFd)
	if err != nil {
		return nil, fmt.Errorf("%w: enter raw mode: %v", ErrTerminal, err)
	}

	t.active = &RawMode{term: t, state: state}
	return t.active, nil
}

// Active reports whether a RawMode is live.
func (t *Terminal) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// SetNonblock sets or clears O_NONBLOCK on the input descriptor.
func (t *Terminal) SetNonblock(nonblocking bool) error {
	if err := unix.SetNonblock(t.inFd, nonblocking); err != nil {
		return fmt.Errorf("%w: set nonblock=%t: %v", ErrTerminal, nonblocking, err)
	}
	return nil
}

// Size returns the output terminal's columns and rows, falling back to the
// configured defaults when the output is not a terminal.
func (t *Terminal) Size() (cols, rows int) {
	cols, rows, err := term.GetSize(t.outFd)
	if err != nil || cols <= 0 || rows <= 0 {
		return t.defaultCols, t.defaultRows
	}
	return cols, rows
}

// Width returns the output terminal's column count, or fallback when the
// output is not a terminal.
func (t *Terminal) Width(fallback int) int {
	cols, _, err := term.GetSize(t.outFd)
	if err != nil || cols <= 0 {
		return fallback
	}
	return cols
}

// RawMode is a live raw-mode scope.
type RawMode struct {
	term  *Terminal
	state *term.State
	once  sync.Once
	err   error
}

// Release restores the mode saved by EnterRaw. Calls after the first are
// no-ops returning the first result.
func (r *RawMode) Release() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() {
		if err := term.Restore(r.term.inFd, r.state); err != nil {
			r.err = fmt.Errorf("%w: restore mode: %v", ErrTerminal, err)
		}
		r.term.mu.Lock()
		if r.term.active == r {
			r.term.active = nil
		}
		r.term.mu.Unlock()
	})
	return r.err
}
