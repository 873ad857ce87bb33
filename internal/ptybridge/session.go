package ptybridge

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/ptysh/internal/shared/id"
)

// Session is one running external command.
type Session struct {
	ID        id.InvocationID
	Path      string
	Args      []string
	Dir       string
	Cols      int
	Rows      int
	StartedAt time.Time

	master   *os.File
	masterFd int
	child    *child
}

func newSession(invocation id.InvocationID, cmd *exec.Cmd, master *os.File, cols, rows int) *Session {
	return &Session{
		ID:        invocation,
		Path:      cmd.Path,
		Args:      cmd.Args[1:],
		Dir:       cmd.Dir,
		Cols:      cols,
		Rows:      rows,
		StartedAt: time.Now(),
		master:    master,
		masterFd:  int(master.Fd()),
		child:     newChild(cmd.Process),
	}
}

// child is the spawned process. Liveness polls from the pumps and the final
// wait share it under mu; the first observed exit status is kept.
type child struct {
	mu     sync.Mutex
	proc   *os.Process
	exited bool
	status unix.WaitStatus
	err    error
}

func newChild(proc *os.Process) *child {
	return &child{proc: proc}
}

// Alive reports whether the child is still running, reaping it without
// blocking if it has exited.
func (c *child) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exited {
		return false
	}
	c.reap(unix.WNOHANG)
	return !c.exited
}

// Wait blocks until the child has exited and returns its status.
func (c *child) Wait() (unix.WaitStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.exited {
		c.reap(0)
	}
	return c.status, c.err
}

// reap runs one wait4 call. Callers hold mu.
func (c *child) reap(options int) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(c.proc.Pid, &ws, options, nil)
	switch {
	case errors.Is(err, unix.EINTR):
		return
	case err != nil:
		c.exited, c.err = true, err
	case pid == c.proc.Pid:
		c.exited, c.status = true, ws
	default:
		return
	}
	_ = c.proc.Release()
}
