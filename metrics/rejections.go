package metrics

import (
	"net/http"
	"strings"

	aulogging "github.com/StephanHCB/go-autumn-logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RejectionCounter //

type RejectionCounterOptions struct {
	MeterName  string
	MetricName string
}

func DefaultRejectionCounterOptions() *RejectionCounterOptions {
	return &RejectionCounterOptions{
		MeterName:  "server",
		MetricName: "http.server.requests.rejected.count",
	}
}

// RejectionCounter counts requests rejected during extraction. A nil counter records nothing.
type RejectionCounter struct {
	counter metric.Int64Counter
}

func NewRejectionCounter(opts *RejectionCounterOptions) *RejectionCounter {
	if opts == nil {
		opts = DefaultRejectionCounterOptions()
	}

	meter := otel.GetMeterProvider().Meter(opts.MeterName)
	counter, err := meter.Int64Counter(
		opts.MetricName,
		metric.WithDescription("How many requests were rejected before reaching a handler, partitioned by extractor source, reason, method, and HTTP path."),
	)
	if err != nil {
		aulogging.Logger.NoCtx().Error().WithErr(err).Print("failed to initialize rejection counter")
		return nil
	}
	return &RejectionCounter{counter: counter}
}

func (c *RejectionCounter) Record(req *http.Request, source string, reason string) {
	if c == nil {
		return
	}
	c.counter.Add(req.Context(), 1, metric.WithAttributes(
		attribute.String("method", req.Method),
		attribute.String("uri", RoutePattern(req)),
		attribute.String("source", source),
		attribute.String("reason", reason),
	))
}

// RoutePattern returns the matched chi route pattern, or an empty string outside a chi router.
func RoutePattern(req *http.Request) string {
	routeCtx := chi.RouteContext(req.Context())
	if routeCtx == nil {
		return ""
	}
	routePattern := strings.Join(routeCtx.RoutePatterns, "")
	return strings.Replace(routePattern, "/*/", "/", -1)
}
