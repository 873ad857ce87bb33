package completion

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	fsys := afero.NewMemMapFs()

	files := []string{
		"/home/u/proj/foo",
		"/home/u/proj/foobar",
		"/home/u/proj/README.md",
		"/home/u/proj/src/main.go",
		"/home/u/proj/src/Makefile",
		"/home/u/proj/fox/den",
		"/usr/bin/ls",
		"/usr/bin/less",
		"/usr/bin/lsblk",
		"/usr/bin/echo",
		"/usr/bin/python3.11",
		"/usr/bin/python3.12",
		"/bin/ls",
		"/bin/sh",
	}
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fsys, f, []byte("#!/bin/sh\n"), 0o755))
	}

	env := environ.Map{"PATH": "/usr/bin:/bin:/missing"}
	wd := environ.NewWorkdir("/home/u/proj")
	return New(fsys, env, wd, 2)
}

func complete(e *Engine, line string) Result {
	return e.Complete(line, len([]rune(line)))
}

func TestCompleteListsWhenPrefixCannotGrow(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "cat fo")
	assert.Equal(t, "cat fo", res.Line)
	assert.Equal(t, []string{"foo", "foobar", "fox"}, res.Listing)
}

func TestCompleteUniqueFileGetsSpace(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "cat foob")
	assert.Equal(t, "cat foobar ", res.Line)
	assert.Empty(t, res.Listing)
}

func TestCompleteUniqueDirectoryGetsSeparator(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "cat sr")
	assert.Equal(t, "cat src/", res.Line)
	assert.Empty(t, res.Listing)
}

func TestCompleteExistingDirectoryLists(t *testing.T) {
	e := newTestEngine(t)

	for _, line := range []string{"cat src", "cat src/", "cat /home/u/proj/src"} {
		res := complete(e, line)
		assert.Equal(t, line, res.Line, line)
		assert.Equal(t, []string{"main.go", "Makefile"}, res.Listing, line)
	}
}

func TestCompleteEmptySegmentListsWorkdir(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "cat ")
	assert.Equal(t, "cat ", res.Line)
	assert.Equal(t, []string{"foo", "foobar", "fox", "README.md", "src"}, res.Listing)

	res = complete(e, "")
	assert.Equal(t, "", res.Line)
	assert.Len(t, res.Listing, 5)
}

func TestCompleteCommandFromSearchPath(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name    string
		line    string
		want    string
		listing []string
	}{
		{name: "unique", line: "ec", want: "echo "},
		{name: "case insensitive", line: "LE", want: "less "},
		{name: "extend to common prefix", line: "py", want: "python3.1"},
		{name: "duplicates across PATH listed once", line: "l", want: "l", listing: []string{"less", "ls", "lsblk"}},
		{name: "exact name with longer sibling", line: "ls", want: "ls", listing: []string{"ls", "lsblk"}},
		{name: "unique after extension", line: "lsb", want: "lsblk "},
		{name: "no match", line: "zzz", want: "zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := complete(e, tt.line)
			assert.Equal(t, tt.want, res.Line)
			assert.Equal(t, tt.listing, res.Listing)
		})
	}
}

func TestCompleteRepeatedTabConverges(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "py")
	require.Equal(t, "python3.1", res.Line)

	res = complete(e, res.Line)
	assert.Equal(t, "python3.1", res.Line)
	assert.Equal(t, []string{"python3.11", "python3.12"}, res.Listing)
}

func TestCompletePathsWithSeparator(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, "./foobar ", complete(e, "./foob").Line)
	assert.Equal(t, "src/main.go ", complete(e, "src/mai").Line)
	assert.Equal(t, "vi src/Makefile ", complete(e, "vi src/mak").Line)

	// Matching ignores case, so both names share "ma"
	res := complete(e, "src/ma")
	assert.Equal(t, "src/ma", res.Line)
	assert.Equal(t, []string{"main.go", "Makefile"}, res.Listing)
	assert.Equal(t, "/home/u/proj/", complete(e, "/home/u/pr").Line)
	assert.Equal(t, "/usr/bin/echo ", complete(e, "/usr/bin/e").Line)
}

func TestCompleteExtensionEndingOnCandidate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/w/build", 0o755))
	for _, f := range []string{"/w/builder.sh", "/w/foo", "/w/foobar", "/w/Notes", "/w/notes.md"} {
		require.NoError(t, afero.WriteFile(fsys, f, nil, 0o644))
	}
	e := New(fsys, environ.Map{}, environ.NewWorkdir("/w"), 2)

	tests := []struct {
		line string
		want string
	}{
		{line: "cat b", want: "cat build/"},
		{line: "cat f", want: "cat foo "},
		{line: "cat n", want: "cat Notes "},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := complete(e, tt.line)
			assert.Equal(t, tt.want, res.Line)
			assert.Empty(t, res.Listing)
		})
	}

	// Once the segment already equals the shared prefix, the names are listed
	res := complete(e, "cat foo")
	assert.Equal(t, "cat foo", res.Line)
	assert.Equal(t, []string{"foo", "foobar"}, res.Listing)
}

func TestCompleteMissingDirectoryIsNoop(t *testing.T) {
	e := newTestEngine(t)

	res := complete(e, "cat nowhere/x")
	assert.Equal(t, "cat nowhere/x", res.Line)
	assert.Empty(t, res.Listing)
}

func TestCompleteCursorInsideLine(t *testing.T) {
	e := newTestEngine(t)

	res := e.Complete("cat foob tail", 8)
	assert.Equal(t, "cat foobar  tail", res.Line)

	// Out of range cursors clamp to the end
	res = e.Complete("cat foob", 99)
	assert.Equal(t, "cat foobar ", res.Line)
}

func TestCompleteEmptySearchPath(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bin/ls", nil, 0o755))
	e := New(fsys, environ.Map{}, environ.NewWorkdir("/"), 2)

	res := complete(e, "l")
	assert.Equal(t, "l", res.Line)
	assert.Empty(t, res.Listing)
}

func TestCompleteIsDeterministic(t *testing.T) {
	e := newTestEngine(t)

	first := complete(e, "cat fo")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, complete(e, "cat fo"))
	}
}
