package bcapture

import (
	"context"
	"net/http"
)

// Handler produces a response by writing into a [ResponseWriter]. It acquires at most one
// output channel and returns an error instead of rendering failures itself.
type Handler interface {
	ServeCapture(ctx context.Context, w ResponseWriter, r *http.Request) error
}

// HandlerFunc allow casting a function to imple [Handler].
type HandlerFunc func(context.Context, ResponseWriter, *http.Request) error

// ServeCapture implements the [Handler] interface.
func (f HandlerFunc) ServeCapture(ctx context.Context, w ResponseWriter, r *http.Request) error {
	return f(ctx, w, r)
}

// FromStd turns a standard library handler into a [Handler]. The standard handler writes
// through the text channel, and never returns an error: it owns its error responses.
func FromStd(h http.Handler) Handler {
	return HandlerFunc(func(_ context.Context, w ResponseWriter, r *http.Request) error {
		h.ServeHTTP(w, r)
		return nil
	})
}

// DisableTransform turns off transformation of the response written to w, for handlers that
// only see a plain http.ResponseWriter. It returns false if w is not a [ResponseWriter].
func DisableTransform(w http.ResponseWriter) bool {
	rw, ok := w.(ResponseWriter)
	if ok {
		rw.SetTransform(false)
	}

	return ok
}

// ToStd converts a handler into a standard library http.Handler. Every request is processed
// by c, errors are logged and rendered as long as nothing was sent to the client yet.
func ToStd(h Handler, c *Controller) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		sink := NewSink(resp, c.charset)

		err := c.Process(req.Context(), sink, req, h)
		if err == nil {
			return
		}

		if sink.Committed() {
			c.logs.LogCommittedServeError(err)
			return
		}

		c.logs.LogUnhandledServeError(err)

		code := int(CodeOf(err))
		if code == 0 {
			code = http.StatusInternalServerError
		}

		// the handler may have declared headers for a body that is never sent.
		resp.Header().Del("Content-Length")
		resp.Header().Del("Content-Type")

		http.Error(resp, http.StatusText(code), code)
	})
}
