package dispatch

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

// Reported errors. The shell prints them on one line and keeps running.
var (
	ErrNotFound      = errors.New("command not found")
	ErrNotExecutable = errors.New("permission denied")
	ErrIsDirectory   = errors.New("is a directory")
	ErrNoHome        = environ.ErrNoHome
	ErrChdir         = errors.New("cd")
	ErrPwd           = errors.New("pwd")
)

// CommandError reports a command token that could not be run.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string { return fmt.Sprintf("%s: %v", e.Name, e.Err) }

func (e *CommandError) Unwrap() error { return e.Err }

// IsReported reports whether err is a recoverable command error. Any other
// error returned by Dispatch ends the session.
func IsReported(err error) bool {
	for _, target := range []error{ErrNotFound, ErrNotExecutable, ErrIsDirectory, ErrNoHome, ErrChdir, ErrPwd} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
