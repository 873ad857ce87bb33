// Package environ holds the shell's view of its process environment: the
// executable search path, the home directory and the working directory.
package environ

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoHome is returned when no home directory can be determined.
var ErrNoHome = errors.New("HOME not set")

// Env is the read side of the process environment.
type Env interface {
	Getenv(key string) string
	// SearchPath returns the PATH directories in their listed order.
	SearchPath() []string
	HomeDir() (string, error)
}

// OS reads the real process environment.
type OS struct{}

func (OS) Getenv(key string) string { return os.Getenv(key) }

func (o OS) SearchPath() []string { return splitPath(o.Getenv("PATH")) }

func (o OS) HomeDir() (string, error) { return homeFrom(o) }

// Map is a fixed environment, used by tests and by callers that need a
// snapshot that does not change underneath them.
type Map map[string]string

func (m Map) Getenv(key string) string { return m[key] }

func (m Map) SearchPath() []string { return splitPath(m["PATH"]) }

func (m Map) HomeDir() (string, error) { return homeFrom(m) }

func homeFrom(env Env) (string, error) {
	if home := env.Getenv("HOME"); home != "" {
		return home, nil
	}
	return "", ErrNoHome
}

// splitPath splits a PATH value, dropping empty entries. An empty or absent
// PATH yields no directories.
func splitPath(value string) []string {
	if value == "" {
		return nil
	}
	var dirs []string
	for _, dir := range filepath.SplitList(value) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Workdir is the shell's current directory. It is shared by completion,
// command resolution, cd and child spawn.
type Workdir struct {
	mu  sync.RWMutex
	dir string
}

// NewWorkdir returns a Workdir starting at dir, which must be absolute.
func NewWorkdir(dir string) *Workdir {
	return &Workdir{dir: filepath.Clean(dir)}
}

// Get returns the current directory.
func (w *Workdir) Get() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dir
}

// Abs resolves p against the current directory.
func (w *Workdir) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(w.Get(), p)
}

func (w *Workdir) set(dir string) {
	w.mu.Lock()
	w.dir = dir
	w.mu.Unlock()
}
