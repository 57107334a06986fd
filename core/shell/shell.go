// Package shell implements the read-eval loop: read one line, run it as a
// child process, wait for the child, repeat until end-of-stream.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/minishell/minish/core/logger"
	"github.com/minishell/minish/core/proc"
)

const (
	// DefaultPrompt matches the console the shell grew out of.
	DefaultPrompt = "~ # "
	// DefaultMaxLineLength bounds a command line in bytes.
	DefaultMaxLineLength = 1024
)

// Shell drives a single session: prompt, read, echo, dispatch, await.
// Execution is strictly serial; at most one child is ever outstanding.
type Shell struct {
	Prompt string
	// Motd is written once before the first prompt.
	Motd string

	Source     LineSource
	Supervisor *proc.Supervisor
	Stdout     io.Writer

	// Events receives the structured record of the session; may be nil.
	Events *logger.SessionLogger
}

// Run executes the loop until the input stream ends. End-of-stream is an
// orderly termination, not an error; every per-command failure is handled
// within its own iteration.
func (s *Shell) Run() error {
	if s.Motd != "" {
		if _, err := io.WriteString(s.Stdout, s.Motd); err != nil {
			return err
		}
	}

	for {
		line, err := s.Source.ReadLine(s.Prompt)
		switch {
		case err == io.EOF:
			return nil
		case errors.Is(err, ErrInterrupted):
			continue
		case err != nil:
			return err
		}

		if _, err := fmt.Fprintf(s.Stdout, "Running command: %s\n", line.Text); err != nil {
			return err
		}

		s.dispatch(line)
	}
}

// dispatch spawns the command and blocks until its child is gone. Spawn has
// already written any diagnostic to the error stream, so all that's left is
// the structured record.
func (s *Shell) dispatch(line Line) {
	outcome, err := s.Supervisor.Spawn(line.Text)

	var spawnErr *proc.SpawnError
	switch {
	case errors.As(err, &spawnErr):
		s.record(&logger.SpawnFailure{
			Command:      line.Text,
			Stage:        string(spawnErr.Stage),
			ErrorMessage: spawnErr.Err.Error(),
		})
	case err != nil:
		log.Printf("spawn %q: %v", line.Text, err)
	default:
		s.record(&logger.RunCommand{
			Command:    line.Text,
			Truncated:  line.Truncated,
			ExitStatus: outcome.ExitStatus,
		})
	}
}

func (s *Shell) record(event logger.Event) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Record(event); err != nil {
		log.Printf("recording event: %v", err)
	}
}
