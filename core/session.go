// Package core wires configuration, event logging, recording, and the shell
// loop into runnable sessions.
package core

import (
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/minishell/minish/core/config"
	"github.com/minishell/minish/core/logger"
	"github.com/minishell/minish/core/proc"
	"github.com/minishell/minish/core/shell"
	"github.com/minishell/minish/core/ttylog"
)

var colorBoldGreen = color.New(color.FgGreen, color.Bold)

func init() {
	// Session streams aren't the process's stdout; decide color by PTY
	// presence instead of fatih/color's own terminal sniffing.
	colorBoldGreen.EnableColor()
}

// SessionInfo describes who the session belongs to and what it's attached to.
type SessionInfo struct {
	Username   string
	RemoteAddr string
	Term       string
	IsPTY      bool
	// Width reports the terminal width; nil when unknown.
	Width func() int
}

// RunSession runs one full shell session over the given streams, blocking
// until the input stream ends.
func RunSession(configuration *config.Configuration, events *logger.Logger, stdio ttylog.Stdio, info SessionInfo) error {
	sessionLogger, stdio, cleanup := startSession(configuration, events, stdio, info)
	defer cleanup()

	motd := configuration.Motd
	if info.IsPTY {
		motd = colorBoldGreen.Sprint(motd)
	}

	source, err := newLineSource(configuration, stdio, info)
	if err != nil {
		return err
	}

	sh := &shell.Shell{
		Prompt:     configuration.Prompt,
		Motd:       motd,
		Source:     source,
		Supervisor: newSupervisor(stdio),
		Stdout:     stdio.Stdout,
		Events:     sessionLogger,
	}

	return sh.Run()
}

// RunExec runs a single command line the way one loop iteration would, for
// non-interactive requests (e.g. `ssh host /bin/uptime`). It returns the
// child's exit status.
func RunExec(configuration *config.Configuration, events *logger.Logger, stdio ttylog.Stdio, info SessionInfo, command string) int {
	sessionLogger, stdio, cleanup := startSession(configuration, events, stdio, info)
	defer cleanup()

	outcome, err := newSupervisor(stdio).Spawn(command)

	if spawnErr, ok := err.(*proc.SpawnError); ok {
		recordEvent(sessionLogger, &logger.SpawnFailure{
			Command:      command,
			Stage:        string(spawnErr.Stage),
			ErrorMessage: spawnErr.Err.Error(),
		})
	} else {
		recordEvent(sessionLogger, &logger.RunCommand{
			Command:    command,
			ExitStatus: outcome.ExitStatus,
		})
	}

	if outcome.ExitStatus < 0 {
		// No child ever ran; report generic failure to the requester.
		return 1
	}
	return outcome.ExitStatus
}

// startSession records the session start, wires up recording when
// configured, and returns the (possibly wrapped) streams plus a cleanup
// function that closes the recording and records the session end.
func startSession(configuration *config.Configuration, events *logger.Logger, stdio ttylog.Stdio, info SessionInfo) (*logger.SessionLogger, ttylog.Stdio, func()) {
	sessionLogger := events.NewSession()
	recordEvent(sessionLogger, &logger.SessionStart{
		Username:   info.Username,
		RemoteAddr: info.RemoteAddr,
		Term:       info.Term,
		IsPTY:      info.IsPTY,
	})

	cleanup := func() {
		recordEvent(sessionLogger, &logger.SessionEnd{})
	}

	if !configuration.RecordSessions {
		return sessionLogger, stdio, cleanup
	}

	logFileName := fmt.Sprintf("%s.%s", time.Now().UTC().Format(time.RFC3339), ttylog.AsciicastFileExt)
	fd, err := configuration.CreateSessionLog(logFileName)
	if err != nil {
		// Recording is best-effort; the session still runs.
		log.Printf("couldn't create session recording: %v", err)
		return sessionLogger, stdio, cleanup
	}

	recordEvent(sessionLogger, &logger.OpenTTYLog{Name: logFileName})
	recorder := ttylog.NewRecorder(stdio, ttylog.NewAsciicastLogSink(fd))

	return sessionLogger, recorder.Stdio, func() {
		if err := recorder.Close(); err != nil {
			log.Printf("closing session recording: %v", err)
		}
		fd.Close()
		recordEvent(sessionLogger, &logger.SessionEnd{})
	}
}

func newSupervisor(stdio ttylog.Stdio) *proc.Supervisor {
	supervisor := proc.NewSupervisor(stdio.Stdin, stdio.Stdout, stdio.Stderr)
	return supervisor
}

// newLineSource picks readline for terminal sessions and the plain bounded
// reader for everything else. Both honor the configured line length.
func newLineSource(configuration *config.Configuration, stdio ttylog.Stdio, info SessionInfo) (shell.LineSource, error) {
	if !info.IsPTY {
		return &shell.BoundedReader{
			R:         stdio.Stdin,
			W:         stdio.Stdout,
			MaxLength: configuration.MaxLineLength,
		}, nil
	}

	width := info.Width
	if width == nil {
		width = func() int { return 80 }
	}

	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(stdio.Stdin),
		Stdout:         stdio.Stdout,
		Stderr:         stdio.Stderr,
		FuncGetWidth:   width,
		FuncIsTerminal: func() bool { return true },
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &shell.ReadlineSource{
		Readline:  rl,
		MaxLength: configuration.MaxLineLength,
	}, nil
}

func recordEvent(sessionLogger *logger.SessionLogger, event logger.Event) {
	if err := sessionLogger.Record(event); err != nil {
		log.Printf("recording event: %v", err)
	}
}
