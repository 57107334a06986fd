package shell

import (
	"io"

	"github.com/abiosoft/readline"
)

// ReadlineSource is a LineSource backed by a readline instance for terminal
// sessions. Readline draws the prompt itself and handles line editing.
type ReadlineSource struct {
	Readline  *readline.Instance
	MaxLength int
}

var _ LineSource = (*ReadlineSource)(nil)

func (s *ReadlineSource) ReadLine(prompt string) (Line, error) {
	s.Readline.SetPrompt(prompt)

	line, err := s.Readline.Readline()
	switch {
	case err == io.EOF:
		return Line{}, io.EOF
	case err == readline.ErrInterrupt:
		return Line{}, ErrInterrupted
	case err != nil:
		return Line{}, err
	}

	if s.MaxLength > 0 && len(line) > s.MaxLength {
		return Line{Text: line[:s.MaxLength], Truncated: true}, nil
	}
	return Line{Text: line}, nil
}
