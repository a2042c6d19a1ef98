package bcapture

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const utf8Name = "utf-8"

// Charset is a character encoding a response declares for its text.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the charset used when a response doesn't declare one.
var UTF8 = Charset{name: utf8Name, enc: encoding.Nop}

// LookupCharset resolves a charset label (as found in a Content-Type header) using the
// WHATWG encoding labels. An empty label resolves to [UTF8]. Encoding text that the charset
// cannot represent fails with [ErrEncoding].
func LookupCharset(label string) (Charset, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return UTF8, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return Charset{}, errors.Mark(errors.Wrapf(err, "unsupported charset %q", label), ErrEncoding)
	}

	name, err := htmlindex.Name(enc)
	if err != nil {
		return Charset{}, errors.Mark(errors.Wrapf(err, "unsupported charset %q", label), ErrEncoding)
	}

	if name == utf8Name {
		return UTF8, nil
	}

	return Charset{name: name, enc: enc}, nil
}

// Name returns the canonical name of the charset.
func (c Charset) Name() string {
	if c.name == "" {
		return utf8Name
	}

	return c.name
}

func (c Charset) isUTF8() bool { return c.name == "" || c.name == utf8Name }

// Encode turns text into bytes.
func (c Charset) Encode(s string) ([]byte, error) {
	if c.isUTF8() {
		if !utf8.ValidString(s) {
			return nil, errors.Wrap(ErrEncoding, "text is not valid utf-8")
		}

		return []byte(s), nil
	}

	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "encode %s", c.name), ErrEncoding)
	}

	return b, nil
}

// Decode turns bytes into text.
func (c Charset) Decode(b []byte) (string, error) {
	if c.isUTF8() {
		if !utf8.Valid(b) {
			return "", errors.Wrap(ErrEncoding, "bytes are not valid utf-8")
		}

		return string(b), nil
	}

	s, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "decode %s", c.name), ErrEncoding)
	}

	return string(s), nil
}

// charsetOf returns the charset declared by the Content-Type header, or def.
func charsetOf(hdr http.Header, def Charset) (Charset, error) {
	cs, ok, err := declaredCharset(hdr)
	if err != nil || ok {
		return cs, err
	}

	return def, nil
}

// sniffCharset is like charsetOf, but when the header declares nothing it looks for a byte
// order mark or a meta tag in body.
func sniffCharset(hdr http.Header, body []byte, def Charset) (Charset, error) {
	cs, ok, err := declaredCharset(hdr)
	if err != nil || ok {
		return cs, err
	}

	_, name, certain := charset.DetermineEncoding(body, hdr.Get("Content-Type"))
	if !certain && !mentionsCharset(body) {
		// nothing but a guess from the bytes themselves
		return def, nil
	}

	return LookupCharset(name)
}

// mentionsCharset reports whether the part of body that is scanned for a meta tag says charset.
func mentionsCharset(body []byte) bool {
	if len(body) > 1024 {
		body = body[:1024]
	}

	return bytes.Contains(bytes.ToLower(body), []byte("charset"))
}

func declaredCharset(hdr http.Header) (Charset, bool, error) {
	ct := hdr.Get("Content-Type")
	if ct == "" {
		return Charset{}, false, nil
	}

	_, params, err := mime.ParseMediaType(ct)
	if err != nil || params["charset"] == "" {
		return Charset{}, false, nil //nolint:nilerr
	}

	cs, err := LookupCharset(params["charset"])
	if err != nil {
		return Charset{}, false, err
	}

	return cs, true, nil
}

// pinCharset makes the Content-Type of hdr declare cs, so whoever encodes the body from the
// header agrees with the bytes that were measured. Without a Content-Type the type is sniffed
// from body.
func pinCharset(hdr http.Header, cs Charset, body []byte) {
	ct := hdr.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}

	mt, params, err := mime.ParseMediaType(ct)
	if err != nil {
		mt, params, _ = mime.ParseMediaType(http.DetectContentType(body))
	}

	if params == nil {
		params = map[string]string{}
	}

	if label := params["charset"]; label != "" {
		if declared, err := LookupCharset(label); err == nil && declared.Name() == cs.Name() {
			hdr.Set("Content-Type", ct)
			return
		}
	}

	params["charset"] = cs.Name()
	hdr.Set("Content-Type", mime.FormatMediaType(mt, params))
}

// TextWriter is the text output channel of a response. Text written to it is encoded in the
// response charset. Close flushes any incomplete encoder state, it does not close the response.
type TextWriter interface {
	io.Writer
	io.StringWriter
	io.Closer
}

type textWriter struct {
	dst    io.Writer
	tw     *transform.Writer
	closed bool
}

func newTextWriter(dst io.Writer, cs Charset) *textWriter {
	if cs.isUTF8() {
		return &textWriter{dst: dst}
	}

	return &textWriter{dst: dst, tw: transform.NewWriter(dst, cs.enc.NewEncoder())}
}

func (w *textWriter) Write(p []byte) (int, error) {
	if w.tw == nil {
		return w.dst.Write(p)
	}

	n, err := w.tw.Write(p)
	if err != nil && !errors.Is(err, ErrBufferFull) {
		return n, errors.Mark(err, ErrEncoding)
	}

	return n, err
}

func (w *textWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *textWriter) Close() error {
	if w.tw == nil || w.closed {
		return nil
	}

	w.closed = true

	if err := w.tw.Close(); err != nil {
		return errors.Mark(err, ErrEncoding)
	}

	return nil
}
