package bcapture

import (
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Sink is the transport-facing side of a response. Like a [Capture] it exposes two mutually
// exclusive output channels, and it refuses header mutations once it has committed.
type Sink interface {
	Header() http.Header
	WriteHeader(code int)
	SetContentLength(n int) error
	Text() (TextWriter, error)
	Binary() (io.Writer, error)
	Committed() bool
}

// ResponseSink adapts a standard library http.ResponseWriter into a [Sink].
type ResponseSink struct {
	resp      http.ResponseWriter
	charset   Charset
	guard     channelGuard
	committed bool
}

// NewSink inits a sink that writes to resp. Text is encoded in the charset declared by the
// Content-Type header at the time the text channel is acquired, or def if there is none.
func NewSink(resp http.ResponseWriter, def Charset) *ResponseSink {
	return &ResponseSink{resp: resp, charset: def}
}

// Header returns the headers of the underlying response.
func (s *ResponseSink) Header() http.Header { return s.resp.Header() }

// WriteHeader commits the status code and headers. Later calls are ignored.
func (s *ResponseSink) WriteHeader(code int) {
	if s.committed {
		return
	}

	s.committed = true
	s.resp.WriteHeader(code)
}

// SetContentLength sets the Content-Length header, overwriting any existing value.
func (s *ResponseSink) SetContentLength(n int) error {
	if s.committed {
		return errors.Wrapf(ErrAlreadyCommitted, "set content length to %d", n)
	}

	s.resp.Header().Set("Content-Length", strconv.Itoa(n))

	return nil
}

// Text acquires the text channel of the response.
func (s *ResponseSink) Text() (TextWriter, error) {
	cs, err := charsetOf(s.resp.Header(), s.charset)
	if err != nil {
		return nil, err
	}

	if err := s.guard.acquire(ChannelText); err != nil {
		return nil, err
	}

	return newTextWriter(sinkWriter{s}, cs), nil
}

// Binary acquires the binary channel of the response.
func (s *ResponseSink) Binary() (io.Writer, error) {
	if err := s.guard.acquire(ChannelBinary); err != nil {
		return nil, err
	}

	return sinkWriter{s}, nil
}

// Committed reports whether headers have been sent.
func (s *ResponseSink) Committed() bool { return s.committed }

// Channel returns the channel that was acquired on the sink.
func (s *ResponseSink) Channel() ChannelState { return s.guard.state }

// Flush sends any data buffered by the underlying writer to the client.
func (s *ResponseSink) Flush() {
	s.committed = true
	_ = http.NewResponseController(s.resp).Flush()
}

type sinkWriter struct{ s *ResponseSink }

func (w sinkWriter) Write(p []byte) (int, error) {
	w.s.committed = true
	return w.s.resp.Write(p)
}

var _ Sink = &ResponseSink{}
