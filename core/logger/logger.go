package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// LogEntry is a single line of the newline delimited JSON event log. Exactly
// one of the event fields is set per entry.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	SessionStart *SessionStart `json:"session_start,omitempty"`
	SessionEnd   *SessionEnd   `json:"session_end,omitempty"`
	RunCommand   *RunCommand   `json:"run_command,omitempty"`
	SpawnFailure *SpawnFailure `json:"spawn_failure,omitempty"`
	OpenTTYLog   *OpenTTYLog   `json:"open_tty_log,omitempty"`
}

// Event returns the event payload carried by the entry, or nil if the entry
// came from a newer writer with an unknown event type.
func (le *LogEntry) Event() Event {
	switch {
	case le.SessionStart != nil:
		return le.SessionStart
	case le.SessionEnd != nil:
		return le.SessionEnd
	case le.RunCommand != nil:
		return le.RunCommand
	case le.SpawnFailure != nil:
		return le.SpawnFailure
	case le.OpenTTYLog != nil:
		return le.OpenTTYLog
	}
	return nil
}

// Event is implemented by all event payloads that can be recorded.
type Event interface {
	attach(le *LogEntry)
}

// SessionStart records the beginning of a shell session.
type SessionStart struct {
	Username   string `json:"username,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Term       string `json:"term,omitempty"`
	IsPTY      bool   `json:"is_pty,omitempty"`
}

func (e *SessionStart) attach(le *LogEntry) { le.SessionStart = e }

// SessionEnd records the end of a shell session.
type SessionEnd struct{}

func (e *SessionEnd) attach(le *LogEntry) { le.SessionEnd = e }

// RunCommand records a command that spawned and was waited on to completion.
type RunCommand struct {
	Command string `json:"command"`
	// Truncated reports that the command line hit the read limit before a
	// line terminator was seen.
	Truncated  bool `json:"truncated,omitempty"`
	ExitStatus int  `json:"exit_status"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// SpawnFailure records a command that never produced a reapable child.
type SpawnFailure struct {
	Command string `json:"command"`
	// Stage is the spawn phase that failed, "create" or "exec".
	Stage        string `json:"stage"`
	ErrorMessage string `json:"error_message"`
}

func (e *SpawnFailure) attach(le *LogEntry) { le.SpawnFailure = e }

// OpenTTYLog records the name of the recording opened for a session.
type OpenTTYLog struct {
	Name string `json:"name"`
}

func (e *OpenTTYLog) attach(le *LogEntry) { le.OpenTTYLog = e }

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *LogEntry) error

// Logger captures interaction event logs for the shell.
type Logger struct {
	Record LogRecorder

	now func() time.Time
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return &Logger{
		Record: func(le *LogEntry) error {
			entry, err := json.Marshal(le)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
		now: time.Now,
	}
}

func (l *Logger) recordEvent(sessionID string, event Event) error {
	now := l.now
	if now == nil {
		now = time.Now
	}

	le := &LogEntry{
		TimestampMicros: now().UnixMicro(),
		SessionID:       sessionID,
	}
	event.attach(le)

	return l.Record(le)
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: fmt.Sprintf("%d", rand.Uint64())}
}

// Sessionless creates a logger with no session ID.
func (l *Logger) Sessionless() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ""}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID shared by all events this logger records.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

func (l *SessionLogger) Record(event Event) error {
	return l.recordEvent(l.sessionID, event)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}
