package environ

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// Chdir errors, reported by the cd built-in.
var (
	ErrNoSuchDir  = errors.New("No such file or directory")
	ErrNotDir     = errors.New("Not a directory")
	ErrPermission = errors.New("Permission denied")
)

// ChdirError carries the path a failed change was attempted with.
type ChdirError struct {
	Path string
	Err  error
}

func (e *ChdirError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *ChdirError) Unwrap() error { return e.Err }

// Chdir changes the working directory to target after checking it on fsys.
// On failure the current directory is left unchanged.
func (w *Workdir) Chdir(fsys afero.Fs, target string) error {
	abs := w.Abs(target)

	info, err := fsys.Stat(abs)
	if err != nil {
		return &ChdirError{Path: target, Err: classify(err)}
	}
	if !info.IsDir() {
		return &ChdirError{Path: target, Err: ErrNotDir}
	}
	if info.Mode().Perm()&0o111 == 0 {
		return &ChdirError{Path: target, Err: ErrPermission}
	}

	dir, err := fsys.Open(abs)
	if err != nil {
		return &ChdirError{Path: target, Err: classify(err)}
	}
	_ = dir.Close()

	w.set(abs)
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNoSuchDir
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	case errors.Is(err, syscall.ENOTDIR):
		return ErrNotDir
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
