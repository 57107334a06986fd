// Package proctest provides a deterministic Launcher for testing code that
// spawns children without touching the host.
package proctest

import (
	"io"

	"github.com/spf13/afero"

	"github.com/minishell/minish/core/proc"
)

// FakeChild is a scripted child process. Its Output and ErrOutput are
// written to the streams it inherited while it is being waited on, so tests
// can assert that child output lands before the parent resumes.
type FakeChild struct {
	ExitStatus int
	Output     string
	ErrOutput  string
	WaitErr    error

	stdout io.Writer
	stderr io.Writer
}

var _ proc.Child = (*FakeChild)(nil)

func (c *FakeChild) Wait() (int, error) {
	if c.Output != "" {
		io.WriteString(c.stdout, c.Output)
	}
	if c.ErrOutput != "" {
		io.WriteString(c.stderr, c.ErrOutput)
	}
	if c.WaitErr != nil {
		return -1, c.WaitErr
	}
	return c.ExitStatus, nil
}

// FakeLauncher hands out scripted children in order. Once the script is
// exhausted it returns children that immediately exit 0.
type FakeLauncher struct {
	StartErr error
	Children []*FakeChild

	// Calls holds the exact paths started, in order.
	Calls []string
}

var _ proc.Launcher = (*FakeLauncher)(nil)

func (l *FakeLauncher) Start(path string, stdin io.Reader, stdout, stderr io.Writer) (proc.Child, error) {
	l.Calls = append(l.Calls, path)

	if l.StartErr != nil {
		return nil, l.StartErr
	}

	child := &FakeChild{}
	if len(l.Children) > 0 {
		child = l.Children[0]
		l.Children = l.Children[1:]
	}
	child.stdout = stdout
	child.stderr = stderr
	return child, nil
}

// NewFsWithExecutables builds an in-memory filesystem where each path is an
// executable file.
func NewFsWithExecutables(paths ...string) afero.Fs {
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte("\x7fELF"), 0755); err != nil {
			panic(err)
		}
		if err := fs.Chmod(p, 0755); err != nil {
			panic(err)
		}
	}
	return fs
}
