package dispatch

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

// Kind classifies a resolved command token.
type Kind int

const (
	NotFound Kind = iota
	Builtin
	External
	NotExecutable
	Directory
)

func (k Kind) String() string {
	switch k {
	case Builtin:
		return "builtin"
	case External:
		return "external"
	case NotExecutable:
		return "not-executable"
	case Directory:
		return "directory"
	default:
		return "not-found"
	}
}

// Resolved is the outcome of resolving one command token. Path is set for
// every kind except Builtin and an unmatched search.
type Resolved struct {
	Kind Kind
	Path string
}

// ownerExec is the owner execute permission bit.
const ownerExec = 0o100

// Resolver maps command tokens to built-ins or files.
type Resolver struct {
	fs       afero.Fs
	env      environ.Env
	wd       *environ.Workdir
	builtins map[string]bool
}

// NewResolver returns a Resolver that knows the given built-in names.
func NewResolver(fsys afero.Fs, env environ.Env, wd *environ.Workdir, builtins ...string) *Resolver {
	r := &Resolver{fs: fsys, env: env, wd: wd, builtins: make(map[string]bool, len(builtins))}
	for _, name := range builtins {
		r.builtins[name] = true
	}
	return r
}

// Resolve classifies token. Built-ins win over files. A token containing a
// separator is a literal path; otherwise the search path is walked in order
// and the first existing entry is taken.
func (r *Resolver) Resolve(token string) Resolved {
	if r.builtins[token] {
		return Resolved{Kind: Builtin}
	}

	if strings.ContainsRune(token, '/') {
		return r.check(r.wd.Abs(token))
	}

	for _, dir := range r.env.SearchPath() {
		path := r.wd.Abs(filepath.Join(dir, token))
		if _, err := r.fs.Stat(path); err == nil {
			return r.check(path)
		}
	}
	return Resolved{Kind: NotFound}
}

func (r *Resolver) check(path string) Resolved {
	info, err := r.fs.Stat(path)
	switch {
	case err != nil:
		return Resolved{Kind: NotFound, Path: path}
	case info.IsDir():
		return Resolved{Kind: Directory, Path: path}
	case info.Mode().Perm()&ownerExec == 0:
		return Resolved{Kind: NotExecutable, Path: path}
	}
	return Resolved{Kind: External, Path: path}
}
