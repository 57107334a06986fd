package shell

import (
	"errors"
	"io"
)

// ErrInterrupted reports that the pending line was discarded (e.g. Ctrl-C);
// the loop clears the line and continues.
var ErrInterrupted = errors.New("interrupted")

// Line is one user-submitted command line, newline-stripped.
type Line struct {
	Text string
	// Truncated reports that the line hit the length limit before a
	// terminator was seen.
	Truncated bool
}

// LineSource yields one command line per call.
//
// ReadLine presents prompt and returns the next line. It returns io.EOF only
// for end-of-stream, and only after writing no output at all for the
// terminating call, so a finished session ends without a dangling prompt.
type LineSource interface {
	ReadLine(prompt string) (Line, error)
}

// BoundedReader is a LineSource over a byte stream. It reads one byte at a
// time and never buffers ahead, so a child process reading the same stream
// sees every byte the shell didn't consume.
type BoundedReader struct {
	R io.Reader
	// W receives the prompt once a line begins.
	W io.Writer
	// MaxLength bounds the bytes kept per line. A line that reaches it with
	// no terminator is returned as-is, truncated.
	MaxLength int
}

var _ LineSource = (*BoundedReader)(nil)

func (b *BoundedReader) ReadLine(prompt string) (Line, error) {
	// Fresh storage per line. A reused buffer with an implicit length is
	// exactly the stale-trailing-bytes hazard.
	var buf []byte
	one := make([]byte, 1)
	promptShown := false

	for len(buf) < b.MaxLength {
		n, err := b.R.Read(one)
		if n > 0 {
			if !promptShown {
				if _, werr := io.WriteString(b.W, prompt); werr != nil {
					return Line{}, werr
				}
				promptShown = true
			}
			if one[0] == '\n' {
				// Strip exactly the one terminator that ended the read.
				return Line{Text: string(buf)}, nil
			}
			buf = append(buf, one[0])
		}

		switch {
		case err == io.EOF:
			if !promptShown {
				// Guard the zero-byte case explicitly; there is no
				// terminator to strip from an empty read.
				return Line{}, io.EOF
			}
			// Bytes followed by end-of-stream are a complete line.
			return Line{Text: string(buf)}, nil
		case err != nil:
			return Line{}, err
		}
	}

	return Line{Text: string(buf), Truncated: true}, nil
}
