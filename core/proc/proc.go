// Package proc creates the shell's child processes and reaps them.
package proc

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// FailureStage identifies which phase of a spawn failed.
type FailureStage string

const (
	// StageCreate means no child process could be created.
	StageCreate FailureStage = "create"
	// StageExec means the child was (or would have been) created but the
	// command image couldn't replace it.
	StageExec FailureStage = "exec"
	// StageWait means the child couldn't be reaped.
	StageWait FailureStage = "wait"
)

// SpawnError reports a command that never ran to completion as a child.
type SpawnError struct {
	Stage   FailureStage
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %s: %v", e.Command, e.Stage, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitOutcome reports how a dispatched command finished. ExitStatus is -1
// when no child was ever created or reaped.
type ExitOutcome struct {
	ExitStatus int
}

// Child is the parent's handle on a started process. Wait blocks until the
// child terminates and returns its exit status; the handle is dead afterward.
type Child interface {
	Wait() (int, error)
}

// Launcher creates child processes. Start is the creation phase; the
// returned Child's Wait is the reaping phase.
type Launcher interface {
	Start(path string, stdin io.Reader, stdout, stderr io.Writer) (Child, error)
}

// Supervisor runs one command at a time as a child process.
//
// The command line is used verbatim as the executable path and its own
// argv[0]: it is never tokenized and never resolved against PATH, so only
// single-token literal paths can run.
type Supervisor struct {
	Launcher Launcher
	// Fs is consulted to verify the command path before creating a child.
	Fs afero.Fs

	// Streams inherited by every child, unmodified and unbuffered.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewSupervisor creates a Supervisor that runs commands on the host.
func NewSupervisor(stdin io.Reader, stdout, stderr io.Writer) *Supervisor {
	return &Supervisor{
		Launcher: ExecLauncher{},
		Fs:       afero.NewOsFs(),
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Spawn runs command as a child process and blocks until that child (never
// an arbitrary one) terminates. A child that ran and exited non-zero is not
// an error; a non-nil error is always a *SpawnError and means the iteration
// produced no completed child. Failures are already reported on the error
// stream when Spawn returns.
func (s *Supervisor) Spawn(command string) (ExitOutcome, error) {
	if err := findExecutable(s.Fs, command); err != nil {
		// The image replacement would fail deterministically; report the
		// way the child would and synthesize its non-zero exit.
		fmt.Fprintf(s.Stderr, "exec failed: %v\n", err)
		return ExitOutcome{ExitStatus: 1}, &SpawnError{Stage: StageExec, Command: command, Err: err}
	}

	child, err := s.Launcher.Start(command, s.Stdin, s.Stdout, s.Stderr)
	if err != nil {
		fmt.Fprintf(s.Stderr, "fork failed: %v\n", err)
		return ExitOutcome{ExitStatus: -1}, &SpawnError{Stage: StageCreate, Command: command, Err: err}
	}

	status, err := child.Wait()
	if err != nil {
		fmt.Fprintf(s.Stderr, "wait failed: %v\n", err)
		return ExitOutcome{ExitStatus: -1}, &SpawnError{Stage: StageWait, Command: command, Err: err}
	}

	return ExitOutcome{ExitStatus: status}, nil
}

// findExecutable verifies that file names a runnable program image.
func findExecutable(vfs afero.Fs, file string) error {
	d, err := vfs.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}
