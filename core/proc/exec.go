package proc

import (
	"errors"
	"io"
	"os/exec"
)

// ExecLauncher starts real host processes.
type ExecLauncher struct{}

var _ Launcher = ExecLauncher{}

func (ExecLauncher) Start(path string, stdin io.Reader, stdout, stderr io.Writer) (Child, error) {
	// Path is set directly so os/exec never consults PATH, and argv is
	// exactly {path}.
	cmd := &exec.Cmd{
		Path:   path,
		Args:   []string{path},
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execChild{cmd: cmd}, nil
}

type execChild struct {
	cmd *exec.Cmd
}

func (c *execChild) Wait() (int, error) {
	err := c.cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	case err != nil:
		return -1, err
	default:
		return 0, nil
	}
}
