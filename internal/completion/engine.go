package completion

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

// Separator is the path separator used in completed text.
const Separator = '/'

// Result is the outcome of one completion request.
type Result struct {
	// Line is the whole buffer after completion.
	Line string
	// Listing holds candidate names to show below the line. It is non-empty
	// only when the segment could not be extended.
	Listing []string
}

// Engine completes command names and paths.
type Engine struct {
	fs      afero.Fs
	env     environ.Env
	wd      *environ.Workdir
	padding int
}

// New returns an Engine reading fsys, taking the search path from env and
// resolving relative fragments against wd. padding is the gap between
// listing columns.
func New(fsys afero.Fs, env environ.Env, wd *environ.Workdir, padding int) *Engine {
	return &Engine{fs: fsys, env: env, wd: wd, padding: padding}
}

type candidate struct {
	name string
	dir  bool
}

// Complete completes the segment of line that ends at cursor, a character
// offset. Out-of-range cursors are clamped to the end of the line.
func (e *Engine) Complete(line string, cursor int) Result {
	runes := []rune(line)
	if cursor < 0 || cursor > len(runes) {
		cursor = len(runes)
	}

	start := cursor
	for start > 0 && !isSpace(runes[start-1]) {
		start--
	}

	head := string(runes[:start])
	segment := string(runes[start:cursor])
	tail := string(runes[cursor:])
	firstToken := strings.TrimSpace(head) == ""

	completed, listing := e.completeSegment(segment, firstToken)
	return Result{Line: head + completed + tail, Listing: listing}
}

// Format renders names as columns for a terminal width columns wide.
func (e *Engine) Format(names []string, width int) string {
	return Columns(names, width, e.padding)
}

func (e *Engine) completeSegment(segment string, firstToken bool) (string, []string) {
	if segment == "" {
		return segment, e.listAll(e.wd.Get())
	}
	if abs := e.wd.Abs(segment); e.isDir(abs) {
		return segment, e.listAll(abs)
	}

	var dirPart, namePart string
	var cands []candidate
	if firstToken && !strings.ContainsRune(segment, Separator) {
		namePart = segment
		cands = e.commandCandidates(namePart)
	} else {
		if i := strings.LastIndexByte(segment, Separator); i >= 0 {
			dirPart, namePart = segment[:i+1], segment[i+1:]
		} else {
			namePart = segment
		}
		dir := dirPart
		if dir == "" {
			dir = "."
		}
		cands = e.matching(e.wd.Abs(dir), namePart)
	}

	if len(cands) == 0 {
		return segment, nil
	}

	if len(cands) == 1 {
		return dirPart + cands[0].name + cands[0].suffix(), nil
	}

	names := namesOf(cands)
	n := CommonPrefixLen(names)
	if n > len([]rune(namePart)) {
		prefix := string([]rune(names[0])[:n])
		// A prefix that is itself a complete name is finished like a
		// unique match.
		for _, c := range cands {
			if strings.EqualFold(c.name, prefix) {
				return dirPart + prefix + c.suffix(), nil
			}
		}
		return dirPart + prefix, nil
	}
	return segment, names
}

func (c candidate) suffix() string {
	if c.dir {
		return string(Separator)
	}
	return " "
}

// commandCandidates gathers entries matching prefix from every search path
// directory. A name found in several directories is kept once, as first seen.
func (e *Engine) commandCandidates(prefix string) []candidate {
	seen := make(map[string]bool)
	var cands []candidate
	for _, dir := range e.env.SearchPath() {
		for _, c := range e.matching(dir, prefix) {
			if seen[c.name] {
				continue
			}
			seen[c.name] = true
			cands = append(cands, c)
		}
	}
	sortCandidates(cands)
	return cands
}

// matching returns the entries of dir whose names start with prefix.
// Unreadable directories yield nothing.
func (e *Engine) matching(dir, prefix string) []candidate {
	infos, err := afero.ReadDir(e.fs, dir)
	if err != nil {
		return nil
	}
	var cands []candidate
	for _, info := range infos {
		if !HasPrefixFold(info.Name(), prefix) {
			continue
		}
		cands = append(cands, candidate{name: info.Name(), dir: e.entryIsDir(dir, info)})
	}
	sortCandidates(cands)
	return cands
}

func (e *Engine) listAll(dir string) []string {
	return namesOf(e.matching(dir, ""))
}

func (e *Engine) entryIsDir(dir string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		return e.isDir(filepath.Join(dir, info.Name()))
	}
	return info.IsDir()
}

func (e *Engine) isDir(path string) bool {
	info, err := e.fs.Stat(path)
	return err == nil && info.IsDir()
}

func sortCandidates(cands []candidate) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return CompareFold(a.name, b.name)
	})
}

func namesOf(cands []candidate) []string {
	if len(cands) == 0 {
		return nil
	}
	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
