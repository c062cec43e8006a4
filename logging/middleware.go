package logging

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Roshick/go-autumn-slog/pkg/logging"
	aulogging "github.com/StephanHCB/go-autumn-logging"
)

// ContextLoggerMiddleware //

type ContextLoggerMiddlewareOptions struct {
	// Logger is placed into every request context. Falls back to the global slog logger of go-autumn-logging.
	Logger *slog.Logger
}

func DefaultContextLoggerMiddlewareOptions() *ContextLoggerMiddlewareOptions {
	return &ContextLoggerMiddlewareOptions{}
}

func NewContextLoggerMiddleware(opts *ContextLoggerMiddlewareOptions) func(http.Handler) http.Handler {
	if opts == nil {
		opts = DefaultContextLoggerMiddlewareOptions()
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			if opts.Logger != nil {
				ctx = logging.ContextWithLogger(ctx, opts.Logger)
			} else if slogging, ok := aulogging.Logger.(*logging.Logging); ok {
				ctx = logging.ContextWithLogger(ctx, slogging.Logger())
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// Rejection //

type Rejection struct {
	Source         string
	Reason         string
	ViolationCount int
	Err            error
}

// LogRejection writes a debug entry for a request that failed extraction.
func LogRejection(ctx context.Context, req *http.Request, rejection Rejection) {
	logger := logging.FromContext(ctx)
	if slogging, ok := aulogging.Logger.(*logging.Logging); ok && logger == nil {
		logger = slogging.Logger()
	}

	subCtx := ctx
	if logger != nil {
		logger = logger.With(
			LogFieldRequestMethod, req.Method,
			LogFieldURLPath, req.URL.Path,
			LogFieldLogger, "request.rejected",
			LogFieldExtractorSource, rejection.Source,
			LogFieldRejectReason, rejection.Reason,
			LogFieldViolationCount, rejection.ViolationCount,
		)
		subCtx = logging.ContextWithLogger(ctx, logger)
	}

	aulogging.Logger.Ctx(subCtx).Debug().WithErr(rejection.Err).Printf("rejected %s %s: %s extraction failed (%s)", req.Method, req.URL.Path, rejection.Source, rejection.Reason)
}
