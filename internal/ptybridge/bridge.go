package ptybridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/ptysh/internal/shared/id"
	"github.com/GriffinCanCode/ptysh/internal/terminal"
)

// ErrFatal marks a failure to allocate the pseudo-terminal or spawn the
// child. The shell cannot continue after it.
var ErrFatal = errors.New("pty bridge failed")

// Config tunes the pumps.
type Config struct {
	BufferSize   int
	PollInterval time.Duration
	// Term is exported to the child when the environment has no TERM.
	Term string
}

// DefaultConfig returns the default pump settings.
func DefaultConfig() Config {
	return Config{
		BufferSize:   4096,
		PollInterval: 10 * time.Millisecond,
		Term:         "xterm-256color",
	}
}

// Typeahead yields input that was read from the terminal but not consumed
// before a child started.
type Typeahead interface {
	Pending() []byte
}

// Bridge runs external programs on the real terminal through a PTY.
type Bridge struct {
	term      *terminal.Terminal
	cfg       Config
	log       *zap.Logger
	typeahead Typeahead
}

// New returns a Bridge on term. Zero config fields take their defaults.
func New(term *terminal.Terminal, cfg Config, log *zap.Logger) *Bridge {
	def := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.Term == "" {
		cfg.Term = def.Term
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{term: term, cfg: cfg, log: log}
}

// SetTypeahead makes every Run hand src's pending input to the child before
// forwarding the terminal.
func (b *Bridge) SetTypeahead(src Typeahead) {
	b.typeahead = src
}

// Run spawns path with args in dir and bridges it until it exits. Any exit
// status is accepted. The terminal is back in its previous mode, blocking,
// when Run returns.
func (b *Bridge) Run(_ context.Context, path string, args []string, dir string) error {
	invocation := id.NewInvocationID()
	log := b.log.With(zap.String("invocation", invocation.String()), zap.String("path", path))

	raw, err := b.term.EnterRaw()
	if err != nil {
		return err
	}

	var master *os.File
	defer func() {
		if err := b.teardown(raw, master); err != nil {
			log.Warn("Terminal teardown incomplete", zap.Error(err))
		}
	}()

	if err := b.term.SetNonblock(true); err != nil {
		return err
	}

	cols, rows := b.term.Size()

	cmd := exec.Command(path, args...)
	cmd.Dir = dir
	cmd.Env = childEnv(os.Environ(), b.cfg.Term)

	master, err = pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return fmt.Errorf("%w: start %s: %v", ErrFatal, path, err)
	}

	session := newSession(invocation, cmd, master, cols, rows)
	log.Debug("Started child",
		zap.Int("pid", cmd.Process.Pid),
		zap.Strings("args", session.Args),
		zap.String("dir", session.Dir),
		zap.Int("cols", session.Cols),
		zap.Int("rows", session.Rows))

	if err := b.forwardTypeahead(session); err != nil {
		log.Debug("Typeahead not delivered", zap.Error(err))
	}

	var g errgroup.Group
	g.Go(func() error { return b.pumpOutput(session) })
	g.Go(func() error { return b.pumpInput(session, log) })
	if err := g.Wait(); err != nil {
		log.Warn("Pump stopped early", zap.Error(err))
	}

	status, err := session.child.Wait()
	if err != nil {
		log.Warn("Wait for child failed", zap.Error(err))
		return nil
	}
	log.Info("Child exited",
		zap.Int("status", status.ExitStatus()),
		zap.Bool("signaled", status.Signaled()),
		zap.Duration("elapsed", time.Since(session.StartedAt)))
	return nil
}

// teardown clears the non-blocking flag, restores the terminal mode and
// closes the master. Every step runs regardless of earlier failures.
func (b *Bridge) teardown(raw *terminal.RawMode, master *os.File) error {
	err := b.term.SetNonblock(false)
	err = multierr.Append(err, raw.Release())
	if master != nil {
		err = multierr.Append(err, master.Close())
	}
	return err
}

// childEnv returns env with TERM set to term unless env already has one.
func childEnv(env []string, term string) []string {
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return env
		}
	}
	return append(env, "TERM="+term)
}
