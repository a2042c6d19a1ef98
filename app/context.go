package app

import (
	"context"
	"net/http"

	"github.com/advdv/bcapture"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const ctxKeyLogger ctxKey = iota

// withRequestLogger makes logs available to handlers through [Log].
func withRequestLogger(logs *zap.Logger) bcapture.Middleware {
	return func(next bcapture.Handler) bcapture.Handler {
		return bcapture.HandlerFunc(func(ctx context.Context, w bcapture.ResponseWriter, r *http.Request) error {
			ctx = context.WithValue(ctx, ctxKeyLogger, logs)
			return next.ServeCapture(ctx, w, r.WithContext(ctx))
		})
	}
}

// Log returns a trace-correlated zap logger from the context. Outside of a request served by
// the app it returns a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	logs, ok := ctx.Value(ctxKeyLogger).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}

	return logs.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
