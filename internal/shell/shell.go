// Package shell is the interactive read-eval loop: a raw-mode line editor
// that hands committed lines to a dispatcher.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ptysh/internal/completion"
	"github.com/GriffinCanCode/ptysh/internal/dispatch"
	"github.com/GriffinCanCode/ptysh/internal/environ"
	"github.com/GriffinCanCode/ptysh/internal/keys"
	"github.com/GriffinCanCode/ptysh/internal/terminal"
)

// Screen is the terminal the editor owns between commands.
type Screen interface {
	EnterRaw() (*terminal.RawMode, error)
	Width(fallback int) int
}

// Completer completes the line under the cursor.
type Completer interface {
	Complete(line string, cursor int) completion.Result
	Format(names []string, width int) string
}

// Dispatcher runs one committed line.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) error
}

// Config wires a Shell.
type Config struct {
	Screen     Screen
	Keys       keys.Source
	Out        io.Writer
	Completer  Completer
	Dispatcher Dispatcher
	Env        environ.Env
	Workdir    *environ.Workdir

	// Prompt follows the working directory on every prompt line.
	Prompt string
	// QuitWords end the shell when committed alone.
	QuitWords []string
	// Width is the listing width used when the screen size is unknown.
	Width int

	Logger *zap.Logger
}

// Shell is the interactive loop.
type Shell struct {
	screen     Screen
	keys       keys.Source
	out        io.Writer
	completer  Completer
	dispatcher Dispatcher
	env        environ.Env
	wd         *environ.Workdir
	prompt     string
	quit       map[string]bool
	width      int
	log        *zap.Logger

	buf []rune
}

// New returns a Shell from cfg.
func New(cfg Config) *Shell {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	quit := make(map[string]bool, len(cfg.QuitWords))
	for _, w := range cfg.QuitWords {
		quit[w] = true
	}
	return &Shell{
		screen:     cfg.Screen,
		keys:       cfg.Keys,
		out:        cfg.Out,
		completer:  cfg.Completer,
		dispatcher: cfg.Dispatcher,
		env:        cfg.Env,
		wd:         cfg.Workdir,
		prompt:     cfg.Prompt,
		quit:       quit,
		width:      cfg.Width,
		log:        log,
	}
}

// Run reads and dispatches lines until input ends or a quit word is
// committed. Reported command errors are printed and the loop continues;
// any other error ends the loop and is returned.
func (s *Shell) Run(ctx context.Context) error {
	s.log.Info("Shell started", zap.String("dir", s.wd.Get()))
	defer s.log.Info("Shell stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.quit[line] {
			return nil
		}

		s.log.Debug("Dispatching", zap.String("line", line))
		if err := s.dispatcher.Dispatch(ctx, line); err != nil {
			if !dispatch.IsReported(err) {
				return err
			}
			s.log.Debug("Command failed", zap.Error(err))
			fmt.Fprintln(s.out, err)
		}
	}
}

// Prompt renders the prompt for dir, abbreviating home to ~.
func Prompt(dir, home, suffix string) string {
	if home != "" && home != "/" {
		switch {
		case dir == home:
			dir = "~"
		case strings.HasPrefix(dir, home+"/"):
			dir = "~" + dir[len(home):]
		}
	}
	return dir + " " + suffix
}

func (s *Shell) promptText() string {
	home, _ := s.env.HomeDir()
	return Prompt(s.wd.Get(), home, s.prompt)
}
