package tracing

import (
	"context"
	"net/http"

	slogging "github.com/Roshick/go-autumn-slog/pkg/logging"
	"github.com/Roshick/go-autumn-validation/header"
	"github.com/Roshick/go-autumn-validation/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type requestIDContextKey struct{}

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDMiddleware //

type RequestIDMiddlewareOptions struct {
	HeaderName   string
	LogFieldName string
	GeneratorFn  func() string
}

func DefaultRequestIDMiddlewareOptions() *RequestIDMiddlewareOptions {
	return &RequestIDMiddlewareOptions{
		HeaderName:   header.XRequestID,
		LogFieldName: logging.LogFieldRequestID,
		GeneratorFn:  uuid.NewString,
	}
}

// NewRequestIDMiddleware propagates or generates a request id and attaches it to the context logger.
func NewRequestIDMiddleware(opts *RequestIDMiddlewareOptions) func(next http.Handler) http.Handler {
	if opts == nil {
		opts = DefaultRequestIDMiddlewareOptions()
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			requestID := req.Header.Get(opts.HeaderName)
			if requestID == "" {
				requestID = opts.GeneratorFn()
			}
			w.Header().Set(opts.HeaderName, requestID)

			ctx := ContextWithRequestID(req.Context(), requestID)
			if logger := slogging.FromContext(ctx); logger != nil {
				ctx = slogging.ContextWithLogger(ctx, logger.With(opts.LogFieldName, requestID))
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// ContextWithSpanLogger adds the trace and span ids of the active span to the context logger.
func ContextWithSpanLogger(ctx context.Context) context.Context {
	logger := slogging.FromContext(ctx)
	if logger == nil {
		return ctx
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ctx
	}
	if spanCtx.HasTraceID() {
		logger = logger.With(logging.LogFieldTraceID, spanCtx.TraceID().String())
	}
	if spanCtx.HasSpanID() {
		logger = logger.With(logging.LogFieldSpanID, spanCtx.SpanID().String())
	}
	return slogging.ContextWithLogger(ctx, logger)
}

// AnnotateRejection records a span event on the active span, if it is recording.
func AnnotateRejection(ctx context.Context, source string, reason string, violationCount int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("request.rejected", trace.WithAttributes(
		attribute.String("extractor.source", source),
		attribute.String("extractor.reason", reason),
		attribute.Int("extractor.violations", violationCount),
	))
}
