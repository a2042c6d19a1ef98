package bcapture

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ControllerConfig configures a [Controller]. Zero values select the defaults.
type ControllerConfig struct {
	// Classifier decides which paths are static resources, defaults to [DefaultClassifier].
	Classifier *Classifier
	// Pipeline transforms captured text. A nil pipeline obfuscates email addresses with the
	// default tokens, use an empty non-nil pipeline to disable transformation altogether.
	Pipeline Pipeline
	// Charset is used for responses that don't declare one, defaults to [UTF8].
	Charset Charset
	// BufLimit limits how many bytes a response may buffer. Zero or less means no limit.
	BufLimit int
	// Logger defaults to the standard library logger.
	Logger Logger
}

// Controller runs handlers against a [Capture] and releases the captured output to the sink,
// transformed and with a recomputed Content-Length. It holds only read-only configuration and
// may be shared by concurrent requests.
type Controller struct {
	classifier *Classifier
	pipeline   Pipeline
	charset    Charset
	bufLimit   int
	logs       Logger
}

// NewController inits a controller from cfg.
func NewController(cfg ControllerConfig) *Controller {
	c := &Controller{
		classifier: cfg.Classifier,
		pipeline:   cfg.Pipeline,
		charset:    cfg.Charset,
		bufLimit:   cfg.BufLimit,
		logs:       cfg.Logger,
	}

	if c.classifier == nil {
		c.classifier = DefaultClassifier()
	}

	if c.pipeline == nil {
		c.pipeline = Pipeline{NewEmailObfuscator(DefaultAtToken, DefaultDotToken).Rule()}
	}

	if c.charset.enc == nil {
		c.charset = UTF8
	}

	if c.bufLimit <= 0 {
		c.bufLimit = -1
	}

	if c.logs == nil {
		c.logs = NewStdLogger(nil)
	}

	return c
}

// Process classifies the request, serves it with h into a fresh capture and releases the
// result to sink. Errors of the handler are returned as-is, nothing is retried.
func (c *Controller) Process(ctx context.Context, sink Sink, r *http.Request, h Handler) error {
	static := c.classifier.Classify(r.URL.Path)

	capt := NewCapture(sink, PolicyFor(static),
		WithBufferLimit(c.bufLimit),
		WithDefaultCharset(c.charset))
	defer capt.Free()

	if err := h.ServeCapture(ctx, capt, r); err != nil {
		return err
	}

	return c.release(sink, capt, static, r.URL.Path)
}

func (c *Controller) release(sink Sink, capt *Capture, static bool, path string) error {
	rel := Release{
		Path:     path,
		Static:   static,
		Channel:  capt.Channel(),
		Buffered: capt.Buffered(),
	}

	apply := (!static && rel.Channel == ChannelText) || (static && rel.Channel != ChannelUnopened)
	if !apply {
		// output already reached the sink, or there is none.
		if err := capt.Close(); err != nil {
			return err
		}

		capt.commit()
		c.logs.LogRelease(rel)

		return nil
	}

	cs, err := capt.Charset()
	if err != nil {
		return err
	}

	raw, err := capt.FinalizeBytes()
	if err != nil {
		return err
	}

	var text string
	out := raw

	if rel.Channel == ChannelText || textual(capt.Header(), raw) {
		text, err = capt.FinalizeText(cs)
		if err != nil {
			return err
		}

		if capt.TransformEnabled() {
			text = c.pipeline.Apply(text)
			rel.Transformed = true
		}

		if out, err = cs.Encode(text); err != nil {
			return err
		}
	}

	capt.sendHeader()

	if rel.Channel == ChannelText {
		// the sink encodes text with the charset its header declares
		pinCharset(sink.Header(), cs, out)
	}

	if err := sink.SetContentLength(len(out)); err != nil {
		return err
	}

	capt.commit()

	if !static {
		tw, err := sink.Text()
		if err != nil {
			return errors.Wrap(err, "acquire sink text channel")
		}

		if _, err := tw.WriteString(text); err != nil {
			return errors.Wrap(err, "write text")
		}

		if err := tw.Close(); err != nil {
			return errors.Wrap(err, "close text")
		}
	} else {
		bw, err := sink.Binary()
		if err != nil {
			return errors.Wrap(err, "acquire sink binary channel")
		}

		if _, err := bw.Write(out); err != nil {
			return errors.Wrap(err, "write bytes")
		}
	}

	rel.Bytes = len(out)
	c.logs.LogRelease(rel)

	return nil
}

var textualTypes = []string{
	"application/json",
	"application/javascript",
	"application/xml",
	"application/xhtml+xml",
	"image/svg+xml",
}

// textual reports whether binary output holds text, going by the declared Content-Type and
// sniffing the body when there is none.
func textual(hdr http.Header, body []byte) bool {
	ct := hdr.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}

	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mt, "text/") || lo.Contains(textualTypes, mt)
}
