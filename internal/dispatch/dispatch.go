// Package dispatch turns a committed line into a built-in call or an
// external program run.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

// Runner runs a resolved external program in dir and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, path string, args []string, dir string) error
}

type builtinFunc func(ctx context.Context, arg string) error

// Dispatcher routes committed lines.
type Dispatcher struct {
	fs       afero.Fs
	env      environ.Env
	wd       *environ.Workdir
	runner   Runner
	out      io.Writer
	log      *zap.Logger
	resolver *Resolver
	builtins map[string]builtinFunc
}

// New returns a Dispatcher. Built-in output goes to out; external programs
// are handed to runner.
func New(fsys afero.Fs, env environ.Env, wd *environ.Workdir, runner Runner, out io.Writer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		fs:     fsys,
		env:    env,
		wd:     wd,
		runner: runner,
		out:    out,
		log:    log,
	}
	d.builtins = map[string]builtinFunc{
		"cd":  d.cd,
		"pwd": d.pwd,
	}

	names := make([]string, 0, len(d.builtins))
	for name := range d.builtins {
		names = append(names, name)
	}
	d.resolver = NewResolver(fsys, env, wd, names...)
	return d
}

// Dispatch runs line. Errors matching IsReported are for the user; anything
// else comes from the runner and is fatal.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) error {
	token, rest := Split(line)
	if token == "" {
		return nil
	}

	res := d.resolver.Resolve(token)
	d.log.Debug("Resolved command",
		zap.String("token", token),
		zap.Stringer("kind", res.Kind),
		zap.String("path", res.Path))

	switch res.Kind {
	case Builtin:
		return d.builtins[token](ctx, rest)
	case External:
		return d.runner.Run(ctx, res.Path, strings.Fields(rest), d.wd.Get())
	case Directory:
		return &CommandError{Name: token, Err: ErrIsDirectory}
	case NotExecutable:
		return &CommandError{Name: token, Err: ErrNotExecutable}
	default:
		return &CommandError{Name: token, Err: ErrNotFound}
	}
}

// Split cuts line at its first whitespace run into the command token and
// the raw argument text that follows.
func Split(line string) (token, rest string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}

func (d *Dispatcher) cd(_ context.Context, arg string) error {
	target, err := d.expandHome(arg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChdir, err)
	}
	if err := d.wd.Chdir(d.fs, target); err != nil {
		return fmt.Errorf("%w: %w", ErrChdir, err)
	}
	d.log.Debug("Changed directory", zap.String("dir", d.wd.Get()))
	return nil
}

// expandHome maps an empty argument to the home directory and replaces a
// leading ~ component with it.
func (d *Dispatcher) expandHome(arg string) (string, error) {
	if arg != "" && arg != "~" && !strings.HasPrefix(arg, "~/") {
		return arg, nil
	}
	home, err := d.env.HomeDir()
	if err != nil {
		return "", err
	}
	if arg == "" || arg == "~" {
		return home, nil
	}
	return home + arg[1:], nil
}

func (d *Dispatcher) pwd(_ context.Context, _ string) error {
	if _, err := fmt.Fprintln(d.out, d.wd.Get()); err != nil {
		return fmt.Errorf("%w: %w", ErrPwd, err)
	}
	return nil
}
