// Package ttylog records and replays the raw byte streams of shell sessions.
package ttylog

import (
	"io"
	"log"
	"sync"
	"time"
)

// FD identifies which of the session's streams an event belongs to.
type FD int

const (
	FDStdin  FD = 0
	FDStdout FD = 1
	FDStderr FD = 2
)

// IO is a single read or write observed on a session stream.
type IO struct {
	Fd   FD
	Data []byte
}

// TTYLogEntry is one recorded event. Exactly one of Io or Close is set.
type TTYLogEntry struct {
	TimestampMicros int64

	Io    *IO
	Close bool
}

// LogSink receives log events.
type LogSink func(t *TTYLogEntry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*TTYLogEntry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(logEntry *TTYLogEntry) error {
		once.Do(func() {
			prevTimeMicros = logEntry.TimestampMicros
		})

		delta := logEntry.TimestampMicros - prevTimeMicros
		prevTimeMicros = logEntry.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(logEntry)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(logEntry *TTYLogEntry) error {
		if logEntry.Io != nil && logEntry.Io.Fd != FDStdin {
			if _, err := w.Write(logEntry.Io.Data); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) (err error) {
	for {
		logEntry, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(logEntry); err != nil {
			return err
		}
	}
}

// Stdio bundles the standard streams of a session.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Recorder forwards a session's streams while logging every transfer.
type Recorder struct {
	Stdio

	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
}

func (r *Recorder) recordIO(fd FD, data []byte) {
	eventTime := r.now()

	// Copy so later writes into a reused caller buffer can't corrupt the log.
	owned := make([]byte, len(data))
	copy(owned, data)

	r.mutex.Lock()
	err := r.output(&TTYLogEntry{
		TimestampMicros: eventTime.UnixMicro(),
		Io: &IO{
			Fd:   fd,
			Data: owned,
		},
	})
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

// Close records the end of the session.
func (r *Recorder) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.output(&TTYLogEntry{
		TimestampMicros: r.now().UnixMicro(),
		Close:           true,
	})
}

type recorderReader struct {
	r       *Recorder
	fd      FD
	wrapped io.Reader
}

func (rc *recorderReader) Read(p []byte) (int, error) {
	amount, err := rc.wrapped.Read(p)
	if err == nil {
		rc.r.recordIO(rc.fd, p[:amount])
	}
	return amount, err
}

type recorderWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.Writer
}

func (rc *recorderWriter) Write(p []byte) (int, error) {
	amount, err := rc.wrapped.Write(p)
	if err == nil {
		rc.r.recordIO(rc.fd, p[:amount])
	}
	return amount, err
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(toWrap Stdio, output LogSink) *Recorder {
	recorder := &Recorder{
		output: output,
		now:    time.Now,
	}

	recorder.Stdio = Stdio{
		Stdin:  &recorderReader{r: recorder, fd: FDStdin, wrapped: toWrap.Stdin},
		Stdout: &recorderWriter{r: recorder, fd: FDStdout, wrapped: toWrap.Stdout},
		Stderr: &recorderWriter{r: recorder, fd: FDStderr, wrapped: toWrap.Stderr},
	}

	return recorder
}
