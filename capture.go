package bcapture

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// BufferingPolicy decides per channel whether output is held in memory or passed straight
// through to the sink. It is fixed when the capture is created.
type BufferingPolicy struct {
	BufferText   bool
	BufferBinary bool
}

// PolicyFor returns the policy for a response. Static resources buffer both channels, anything
// else only buffers text and streams binary output directly.
func PolicyFor(static bool) BufferingPolicy {
	return BufferingPolicy{BufferText: true, BufferBinary: static}
}

// ResponseWriter is what handlers write their response to. Write goes through the text channel,
// Text and Binary acquire a channel explicitly. Only one channel may ever be acquired.
type ResponseWriter interface {
	http.ResponseWriter
	Text() (TextWriter, error)
	Binary() (io.Writer, error)
	Channel() ChannelState
	SetTransform(enabled bool)
}

// CaptureOption configures a [Capture].
type CaptureOption func(*Capture)

// WithBufferLimit limits the number of bytes a capture buffers. A negative value means no limit.
func WithBufferLimit(n int) CaptureOption {
	return func(c *Capture) { c.limit = n }
}

// WithDefaultCharset sets the charset used when the response doesn't declare one.
func WithDefaultCharset(cs Charset) CaptureOption {
	return func(c *Capture) { c.def = cs }
}

// Capture wraps a [Sink] and buffers what a handler writes to it according to a
// [BufferingPolicy]. A capture serves exactly one request and must not be reused.
type Capture struct {
	sink   Sink
	policy BufferingPolicy
	guard  channelGuard
	limit  int
	def    Charset

	buf     *bytebufferpool.ByteBuffer
	charset Charset
	text    TextWriter

	header     http.Header
	headerSent bool
	status     int
	forwarded  bool
	transform  bool

	finalized bool
	final     string
}

// NewCapture inits a capture in front of sink.
func NewCapture(sink Sink, policy BufferingPolicy, opts ...CaptureOption) *Capture {
	c := &Capture{
		sink:      sink,
		policy:    policy,
		limit:     -1,
		def:       UTF8,
		header:    make(http.Header),
		transform: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Header returns the response headers. They are held by the capture until it commits to the
// sink, after that the sink's headers are returned.
func (c *Capture) Header() http.Header {
	if c.headerSent {
		return c.sink.Header()
	}

	return c.header
}

// WriteHeader records the status code. It is forwarded to the sink right away when a
// passthrough channel is active, and when the capture is released otherwise.
func (c *Capture) WriteHeader(code int) {
	if c.status != 0 {
		return
	}

	c.status = code
	if c.passthrough() {
		c.commit()
	}
}

// Write writes text to the response. It acquires the text channel on first use and shares
// the writer returned by an earlier call to Text.
func (c *Capture) Write(p []byte) (int, error) {
	if c.text == nil {
		if _, err := c.Text(); err != nil {
			return 0, err
		}
	}

	return c.text.Write(p)
}

// Text acquires the text channel. The charset is resolved first, an unknown charset leaves
// the channel unopened.
func (c *Capture) Text() (TextWriter, error) {
	if err := c.guard.check(ChannelText); err != nil {
		return nil, err
	}

	cs, err := charsetOf(c.Header(), c.def)
	if err != nil {
		return nil, err
	}

	if err := c.guard.acquire(ChannelText); err != nil {
		return nil, err
	}

	c.charset = cs

	if !c.policy.BufferText {
		c.commit()

		tw, err := c.sink.Text()
		if err != nil {
			return nil, errors.Wrap(err, "acquire sink text channel")
		}

		c.text = tw

		return tw, nil
	}

	tw := newTextWriter(c.buffer(), cs)
	c.text = tw

	return tw, nil
}

// Binary acquires the binary channel.
func (c *Capture) Binary() (io.Writer, error) {
	if err := c.guard.acquire(ChannelBinary); err != nil {
		return nil, err
	}

	if !c.policy.BufferBinary {
		c.commit()

		w, err := c.sink.Binary()
		if err != nil {
			return nil, errors.Wrap(err, "acquire sink binary channel")
		}

		return w, nil
	}

	return c.buffer(), nil
}

// Channel returns which channel the handler acquired.
func (c *Capture) Channel() ChannelState { return c.guard.state }

// Policy returns the buffering policy of the capture.
func (c *Capture) Policy() BufferingPolicy { return c.policy }

// SetTransform enables or disables transformation of the captured text. It defaults to true
// and is only read after the handler has returned.
func (c *Capture) SetTransform(enabled bool) { c.transform = enabled }

// TransformEnabled reports whether the captured text should be transformed.
func (c *Capture) TransformEnabled() bool { return c.transform }

// Status returns the recorded status code, or 0 if none was written.
func (c *Capture) Status() int { return c.status }

// Charset returns the charset of the response. For the text channel it is the charset that
// was declared when the channel was acquired. For buffered binary output that declares no
// charset in its header, a byte order mark or meta tag in the body is honoured.
func (c *Capture) Charset() (Charset, error) {
	switch {
	case c.guard.state == ChannelText:
		return c.charset, nil
	case c.guard.state == ChannelBinary && c.Buffered():
		return sniffCharset(c.Header(), c.buf.B, c.def)
	default:
		return charsetOf(c.Header(), c.def)
	}
}

// Buffered reports whether the acquired channel is being held in memory.
func (c *Capture) Buffered() bool {
	return c.buf != nil && !c.passthrough()
}

// Flush implements http.Flusher. It only reaches the client when a passthrough channel is
// active, buffered output stays buffered.
func (c *Capture) Flush() {
	if !c.passthrough() {
		return
	}

	c.commit()
	if f, ok := c.sink.(http.Flusher); ok {
		f.Flush()
	}
}

// FinalizeBytes returns the raw buffered bytes. The slice is only valid until [Capture.Free].
func (c *Capture) FinalizeBytes() ([]byte, error) {
	if !c.Buffered() {
		return nil, errors.Wrapf(ErrNotBuffered, "finalize %s channel", c.guard.state)
	}

	if err := c.Close(); err != nil {
		return nil, err
	}

	return c.buf.B, nil
}

// FinalizeText decodes the buffered bytes using cs. Calling it again returns the same text.
func (c *Capture) FinalizeText(cs Charset) (string, error) {
	if c.finalized {
		return c.final, nil
	}

	b, err := c.FinalizeBytes()
	if err != nil {
		return "", err
	}

	s, err := cs.Decode(b)
	if err != nil {
		return "", err
	}

	c.final, c.finalized = s, true

	return s, nil
}

// Close flushes pending encoder state of the acquired text channel.
func (c *Capture) Close() error {
	if c.text == nil {
		return nil
	}

	if err := c.text.Close(); err != nil {
		return errors.Wrap(err, "close text channel")
	}

	return nil
}

// Free returns the buffer to the pool. The capture must not be used afterwards.
func (c *Capture) Free() {
	if c.buf != nil {
		bytebufferpool.Put(c.buf)
		c.buf = nil
	}
}

func (c *Capture) passthrough() bool {
	switch c.guard.state {
	case ChannelText:
		return !c.policy.BufferText
	case ChannelBinary:
		return !c.policy.BufferBinary
	default:
		return false
	}
}

// sendHeader copies the held headers onto the sink.
func (c *Capture) sendHeader() {
	if c.headerSent {
		return
	}

	c.headerSent = true

	dst := c.sink.Header()
	for k, v := range c.header {
		dst[k] = v
	}
}

// commit sends the headers and, if one was written, the status code to the sink.
func (c *Capture) commit() {
	c.sendHeader()
	if c.status == 0 || c.forwarded {
		return
	}

	c.forwarded = true
	c.sink.WriteHeader(c.status)
}

func (c *Capture) buffer() io.Writer {
	if c.buf == nil {
		c.buf = bytebufferpool.Get()
	}

	return limitedBuffer{c}
}

type limitedBuffer struct{ c *Capture }

func (l limitedBuffer) Write(p []byte) (int, error) {
	if l.c.limit >= 0 && l.c.buf.Len()+len(p) > l.c.limit {
		return 0, errors.Wrapf(ErrBufferFull, "write %d bytes past limit of %d", len(p), l.c.limit)
	}

	return l.c.buf.Write(p)
}

var _ ResponseWriter = &Capture{}
