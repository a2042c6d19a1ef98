package bcapture_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/advdv/bcapture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapWithoutMiddleware(t *testing.T) {
	hdlr1 := bcapture.HandlerFunc(func(context.Context, bcapture.ResponseWriter, *http.Request) error {
		return nil
	})

	hdlr2 := bcapture.Wrap(hdlr1)
	require.Equal(t, fmt.Sprint(hdlr1), fmt.Sprint(hdlr2)) // compare addrs
}

func TestWrapOrder(t *testing.T) {
	var res string
	hdlr1 := bcapture.HandlerFunc(func(ctx context.Context, _ bcapture.ResponseWriter, r *http.Request) error {
		res += fmt.Sprintf("inner %v", ctx.Value(ctxKey("foo")))

		// the request's context and ctx carry the same values and deadline.
		assert.Equal(t, ctx.Value(ctxKey("foo")), r.Context().Value(ctxKey("foo")))

		dl1, ok1 := ctx.Deadline()
		dl2, ok2 := r.Context().Deadline()
		assert.Equal(t, dl1, dl2)
		assert.Equal(t, ok1, ok2)

		return errors.New("inner error")
	})

	trace := func(name string) bcapture.Middleware {
		return func(n bcapture.Handler) bcapture.Handler {
			return bcapture.HandlerFunc(func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) error {
				res += name + "("
				err := n.ServeCapture(ctx, w, r)
				res += ")" + name

				return fmt.Errorf("%s(%w)", name, err)
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctx)

	capt := bcapture.NewCapture(bcapture.NewSink(rec, bcapture.UTF8), bcapture.PolicyFor(false))
	defer capt.Free()

	err := bcapture.Wrap(hdlr1, trace("3"), middleware1, trace("2"), trace("1")).ServeCapture(ctx, capt, req)
	require.Equal(t, "3(2(1(inner bar)1)2)3", res)
	require.EqualError(t, err, `3(2(1(inner error)))`)
}

func TestRecovererDiscardsCapturedOutput(t *testing.T) {
	mux := bcapture.NewServeMux()
	mux.Use(Recoverer())
	mux.HandleFunc("GET /", func(_ context.Context, w bcapture.ResponseWriter, _ *http.Request) error {
		w.Header().Set("X-Foo", "bar")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "some body") // never reaches the client

		panic("some panic")
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, http.Header{
		"Content-Type":           {"text/plain; charset=utf-8"},
		"X-Content-Type-Options": {"nosniff"},
	}, rec.Header())
	require.Equal(t, "Internal Server Error\n", rec.Body.String())
}

// Recoverer middleware. It will recover any panics and turn it into an error.
func Recoverer() bcapture.Middleware {
	return func(next bcapture.Handler) bcapture.Handler {
		return bcapture.HandlerFunc(func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if e := recover(); e != nil {
					err = fmt.Errorf("recovered: %v", e)
				}
			}()

			return next.ServeCapture(ctx, w, r)
		})
	}
}
