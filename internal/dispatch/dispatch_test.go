package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ptysh/internal/environ"
)

type runCall struct {
	path string
	args []string
	dir  string
}

type fakeRunner struct {
	calls []runCall
	err   error
}

func (f *fakeRunner) Run(_ context.Context, path string, args []string, dir string) error {
	f.calls = append(f.calls, runCall{path: path, args: args, dir: dir})
	return f.err
}

type fixture struct {
	fs     afero.Fs
	wd     *environ.Workdir
	runner *fakeRunner
	out    *bytes.Buffer
	d      *Dispatcher
}

func newFixture(t *testing.T, env environ.Map) *fixture {
	t.Helper()
	fsys := afero.NewMemMapFs()

	require.NoError(t, fsys.MkdirAll("/home/u/proj/sub", 0o755))
	require.NoError(t, fsys.MkdirAll("/usr/bin/tools", 0o755))
	require.NoError(t, fsys.MkdirAll("/bin", 0o755))
	require.NoError(t, fsys.Mkdir("/home/u/locked", 0o600))
	require.NoError(t, afero.WriteFile(fsys, "/usr/bin/echo", nil, 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/bin/echo", nil, 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/bin/ls", nil, 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/usr/bin/notes.txt", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/proj/run.sh", nil, 0o700))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/proj/data.csv", nil, 0o644))

	if env == nil {
		env = environ.Map{"PATH": "/usr/bin:/bin", "HOME": "/home/u"}
	}
	f := &fixture{
		fs:     fsys,
		wd:     environ.NewWorkdir("/home/u/proj"),
		runner: &fakeRunner{},
		out:    &bytes.Buffer{},
	}
	f.d = New(fsys, env, f.wd, f.runner, f.out, nil)
	return f
}

func TestSplit(t *testing.T) {
	tests := []struct {
		line, token, rest string
	}{
		{line: "ls", token: "ls"},
		{line: "  ls  ", token: "ls"},
		{line: "ls -la /tmp", token: "ls", rest: "-la /tmp"},
		{line: "cd \t My Documents", token: "cd", rest: "My Documents"},
		{line: "", token: ""},
	}

	for _, tt := range tests {
		token, rest := Split(tt.line)
		assert.Equal(t, tt.token, token, tt.line)
		assert.Equal(t, tt.rest, rest, tt.line)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, nil)
	r := f.d.resolver

	tests := []struct {
		token string
		want  Resolved
	}{
		{token: "cd", want: Resolved{Kind: Builtin}},
		{token: "pwd", want: Resolved{Kind: Builtin}},
		{token: "echo", want: Resolved{Kind: External, Path: "/usr/bin/echo"}},
		{token: "ls", want: Resolved{Kind: External, Path: "/bin/ls"}},
		{token: "nope", want: Resolved{Kind: NotFound}},
		{token: "notes.txt", want: Resolved{Kind: NotExecutable, Path: "/usr/bin/notes.txt"}},
		{token: "tools", want: Resolved{Kind: Directory, Path: "/usr/bin/tools"}},
		{token: "./run.sh", want: Resolved{Kind: External, Path: "/home/u/proj/run.sh"}},
		{token: "./data.csv", want: Resolved{Kind: NotExecutable, Path: "/home/u/proj/data.csv"}},
		{token: "sub/", want: Resolved{Kind: Directory, Path: "/home/u/proj/sub"}},
		{token: "/bin/missing", want: Resolved{Kind: NotFound, Path: "/bin/missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.token))
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	f := newFixture(t, nil)
	r := f.d.resolver

	for _, token := range []string{"echo", "nope", "notes.txt", "./run.sh"} {
		first := r.Resolve(token)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, r.Resolve(token), token)
		}
	}
}

func TestResolveEmptySearchPath(t *testing.T) {
	f := newFixture(t, environ.Map{})
	assert.Equal(t, Resolved{Kind: NotFound}, f.d.resolver.Resolve("echo"))
}

func TestDispatchExternal(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.d.Dispatch(context.Background(), "echo  hello   world"))
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, runCall{
		path: "/usr/bin/echo",
		args: []string{"hello", "world"},
		dir:  "/home/u/proj",
	}, f.runner.calls[0])
}

func TestDispatchRunnerErrorIsFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.runner.err = errors.New("pty allocation failed")

	err := f.d.Dispatch(context.Background(), "ls")
	require.Error(t, err)
	assert.False(t, IsReported(err))
}

func TestDispatchReportedErrors(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		line   string
		target error
		msg    string
	}{
		{line: "nope", target: ErrNotFound, msg: "nope: command not found"},
		{line: "notes.txt", target: ErrNotExecutable, msg: "notes.txt: permission denied"},
		{line: "./sub", target: ErrIsDirectory, msg: "./sub: is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := f.d.Dispatch(context.Background(), tt.line)
			require.ErrorIs(t, err, tt.target)
			assert.True(t, IsReported(err))
			assert.EqualError(t, err, tt.msg)
		})
	}
	assert.Empty(t, f.runner.calls)
}

func TestDispatchBlankLine(t *testing.T) {
	f := newFixture(t, nil)
	assert.NoError(t, f.d.Dispatch(context.Background(), "   "))
	assert.Empty(t, f.runner.calls)
}

func TestCd(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.d.Dispatch(ctx, "cd sub"))
	assert.Equal(t, "/home/u/proj/sub", f.wd.Get())

	require.NoError(t, f.d.Dispatch(ctx, "cd .."))
	assert.Equal(t, "/home/u/proj", f.wd.Get())

	require.NoError(t, f.d.Dispatch(ctx, "cd"))
	assert.Equal(t, "/home/u", f.wd.Get())

	require.NoError(t, f.d.Dispatch(ctx, "cd ~/proj/sub"))
	assert.Equal(t, "/home/u/proj/sub", f.wd.Get())

	require.NoError(t, f.d.Dispatch(ctx, "cd /"))
	assert.Equal(t, "/", f.wd.Get())
}

func TestCdNonexistentKeepsDirectory(t *testing.T) {
	f := newFixture(t, nil)

	err := f.d.Dispatch(context.Background(), "cd /nonexistent")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.ErrorIs(t, err, environ.ErrNoSuchDir)
	assert.Contains(t, err.Error(), "/nonexistent")
	assert.Equal(t, "/home/u/proj", f.wd.Get())

	// Relative resolution still uses the old directory
	assert.Equal(t, Resolved{Kind: External, Path: "/home/u/proj/run.sh"}, f.d.resolver.Resolve("./run.sh"))
}

func TestCdIntoFile(t *testing.T) {
	f := newFixture(t, nil)

	err := f.d.Dispatch(context.Background(), "cd data.csv")
	require.ErrorIs(t, err, environ.ErrNotDir)
	assert.True(t, IsReported(err))
	assert.Equal(t, "/home/u/proj", f.wd.Get())
}

func TestCdWithoutSearchPermission(t *testing.T) {
	f := newFixture(t, nil)

	err := f.d.Dispatch(context.Background(), "cd ~/locked")
	require.ErrorIs(t, err, environ.ErrPermission)
	assert.True(t, IsReported(err))
	assert.Equal(t, "/home/u/proj", f.wd.Get())
}

func TestCdWithoutHome(t *testing.T) {
	f := newFixture(t, environ.Map{"PATH": "/bin"})

	for _, line := range []string{"cd", "cd ~", "cd ~/x"} {
		err := f.d.Dispatch(context.Background(), line)
		require.ErrorIs(t, err, ErrNoHome, line)
		assert.True(t, IsReported(err))
		assert.EqualError(t, err, "cd: HOME not set")
	}
	assert.Equal(t, "/home/u/proj", f.wd.Get())
}

func TestPwd(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.d.Dispatch(context.Background(), "pwd"))
	assert.Equal(t, "/home/u/proj\n", f.out.String())
}

func TestIsReported(t *testing.T) {
	assert.False(t, IsReported(nil))
	assert.False(t, IsReported(errors.New("boom")))
	assert.True(t, IsReported(&CommandError{Name: "x", Err: ErrNotFound}))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPwdWriteFailureIsReported(t *testing.T) {
	f := newFixture(t, nil)
	d := New(f.fs, environ.Map{"PATH": "/bin"}, f.wd, f.runner, failingWriter{}, nil)

	err := d.Dispatch(context.Background(), "pwd")
	require.ErrorIs(t, err, ErrPwd)
	assert.True(t, IsReported(err))
	assert.EqualError(t, err, "pwd: broken pipe")
}
