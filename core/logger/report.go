package logger

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	Session      SessionReport      `json:"session_report"`
	RunCommand   RunCommandReport   `json:"run_command_report"`
	SpawnFailure SpawnFailureReport `json:"spawn_failure_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.Event().(type) {
	case *SessionStart:
		r.Session.update(event)
	case *RunCommand:
		r.RunCommand.update(event)
	case *SpawnFailure:
		r.SpawnFailure.update(event)
	case *SessionEnd, *OpenTTYLog:
		// Ignore
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type SessionReport struct {
	Count int `json:"count"`
	// List of usernames and their counts.
	Usernames StrCounter `json:"usernames"`
	// List of remote addresses and their counts.
	RemoteAddrs StrCounter `json:"remote_addrs"`
}

func (r *SessionReport) update(s *SessionStart) {
	r.Count++
	r.Usernames.Increment(s.Username)
	r.RemoteAddrs.Increment(s.RemoteAddr)
}

type RunCommandReport struct {
	// Commands dispatched, exactly as typed.
	Commands StrCounter `json:"commands"`
	// Exit statuses observed after waiting on children.
	ExitStatuses StrCounter `json:"exit_statuses"`
	// Commands that hit the line length limit.
	Truncated StrCounter `json:"truncated,omitempty"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.Commands.Increment(rc.Command)
	r.ExitStatuses.Increment(fmt.Sprintf("%d", rc.ExitStatus))
	if rc.Truncated {
		r.Truncated.Increment(rc.Command)
	}
}

type SpawnFailureReport struct {
	Failures *PathCounter `json:"failures"`
}

func (r *SpawnFailureReport) update(sf *SpawnFailure) {
	if r.Failures == nil {
		r.Failures = NewPathCounter("command", "stage", "error")
	}
	r.Failures.Increment(sf.Command, sf.Stage, sf.ErrorMessage)
}

// InteractionReport groups events by session.
type InteractionReport struct {
	// Map of sessionID -> interactions
	interactions map[string]*InteractiveSession
}

type InteractiveSession struct {
	Login struct {
		Username   string `json:"username"`
		RemoteAddr string `json:"remote_addr,omitempty"`
	} `json:"login"`
	TTYLog       string `json:"tty_log"`
	LogEntries   int    `json:"log_entries"`
	TerminalName string `json:"terminal_name"`
	IsPty        bool   `json:"is_pty"`

	Commands []string `json:"commands"`
	Failures []string `json:"failures"`
}

func (i *InteractiveSession) Update(le *LogEntry) {
	i.LogEntries++

	switch event := le.Event().(type) {
	case *SessionStart:
		i.Login.Username = event.Username
		i.Login.RemoteAddr = event.RemoteAddr
		i.TerminalName = event.Term
		i.IsPty = event.IsPTY
	case *RunCommand:
		i.Commands = append(i.Commands, event.Command)
	case *SpawnFailure:
		i.Failures = append(i.Failures, fmt.Sprintf("%q: %s: %s", event.Command, event.Stage, event.ErrorMessage))
	case *OpenTTYLog:
		i.TTYLog = event.Name
	}
}

func (i *InteractionReport) init() {
	if i.interactions == nil {
		i.interactions = make(map[string]*InteractiveSession)
	}
}

// MarshalJSON implements a custom JSON marshaler.
func (i *InteractionReport) MarshalJSON() ([]byte, error) {
	i.init()

	return json.Marshal(i.interactions)
}

func (i *InteractionReport) Update(le *LogEntry) {
	i.init()

	sessionID := le.SessionID
	if sessionID == "" {
		return
	}
	report, ok := i.interactions[sessionID]
	if !ok {
		report = &InteractiveSession{}
		i.interactions[sessionID] = report
	}

	report.Update(le)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of string tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements a custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	// Keys are marshaled by toKey so they always round-trip.
	_ = json.Unmarshal([]byte(key), &out)
	return
}
