package bcapture

import (
	"log"
	"sync/atomic"
	"testing"
)

// Release describes how a captured response was released to the client.
type Release struct {
	Path        string
	Static      bool
	Channel     ChannelState
	Buffered    bool
	Transformed bool
	Bytes       int
}

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogCommittedServeError(err error)
	LogRelease(rel Release)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("bcapture: unhandled server error: %s", err)
}

func (l stdLogger) LogCommittedServeError(err error) {
	l.Logger.Printf("bcapture: server error after response was committed: %s", err)
}

func (l stdLogger) LogRelease(Release) {}

// NewStdLogger logs errors to l, releases are not logged.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.Default()
	}

	return stdLogger{l}
}

// TestLogger logs to a testing.TB and counts what was logged.
type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogCommittedServeError int64
	NumLogRelease             int64

	LastRelease atomic.Pointer[Release]
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bcapture: unhandled server error: %s", err)
}

func (l *TestLogger) LogCommittedServeError(err error) {
	atomic.AddInt64(&l.NumLogCommittedServeError, 1)
	l.tb.Logf("bcapture: server error after response was committed: %s", err)
}

func (l *TestLogger) LogRelease(rel Release) {
	atomic.AddInt64(&l.NumLogRelease, 1)
	l.LastRelease.Store(&rel)
}

var _ Logger = &TestLogger{}
