package ttylog

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConversions(t *testing.T) {
	cases := map[string]struct {
		microseconds int64
		seconds      float64
	}{
		"precision": {
			microseconds: 1,
			seconds:      1e-6,
		},
		"negative": {
			microseconds: -631119539e6,
			seconds:      -631119539,
		},
		"positive": {
			microseconds: 631119539e6,
			seconds:      631119539,
		},
		"bigprecise": {
			microseconds: 123456789987654,
			seconds:      123456789.987654,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s2m := secondsToMicroseconds(tc.seconds)
			m2s := microsecondsToSeconds(tc.microseconds)

			// Only allow delta to be to the NS
			assert.InDelta(t, m2s, tc.seconds, float64(time.Nanosecond)/float64(time.Second))
			assert.Equal(t, s2m, tc.microseconds)
		})
	}
}

func TestRecorderAsciicastRoundTrip(t *testing.T) {
	recording := &bytes.Buffer{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	recorder := NewRecorder(Stdio{
		Stdin:  strings.NewReader("/bin/true\n"),
		Stdout: stdout,
		Stderr: stderr,
	}, NewAsciicastLogSink(recording))
	recorder.now = func() time.Time { return time.UnixMicro(1136171045000000) }

	// Drive the wrapped streams the way a session would.
	line, err := io.ReadAll(recorder.Stdin)
	require.NoError(t, err)
	assert.Equal(t, "/bin/true\n", string(line))

	_, err = io.WriteString(recorder.Stdout, "~ # ")
	require.NoError(t, err)
	_, err = io.WriteString(recorder.Stderr, "exec failed\n")
	require.NoError(t, err)
	require.NoError(t, recorder.Close())

	assert.Equal(t, "~ # ", stdout.String())
	assert.Equal(t, "exec failed\n", stderr.String())

	// First line is the asciicast header.
	lines := strings.Split(strings.TrimSpace(recording.String()), "\n")
	require.Len(t, lines, 4) // header + stdin + stdout + stderr; Close is a no-op

	var header map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.Equal(t, float64(2), header["version"])

	// Replay the recording; only output events reach the client.
	replayed := &bytes.Buffer{}
	source := NewAsciicastLogSource(bytes.NewReader(recording.Bytes()))
	require.NoError(t, Replay(source, NewClientOutput(replayed)))
	assert.Equal(t, "~ # exec failed\n", replayed.String())
}

func TestAsciicastLogSourceSkipsJunk(t *testing.T) {
	input := `{"version":2}
[0.5, "x", "ignored"]

[1.5, "o", "hello"]
`
	source := NewAsciicastLogSource(strings.NewReader(input))

	entry, err := source.Next()
	require.NoError(t, err)
	require.NotNil(t, entry.Io)
	assert.Equal(t, FDStdout, entry.Io.Fd)
	assert.Equal(t, "hello", string(entry.Io.Data))
	assert.Equal(t, int64(1500000), entry.TimestampMicros)

	_, err = source.Next()
	assert.Equal(t, io.EOF, err)
}
