package resiliency

import (
	"net/http"
	"runtime/debug"

	weberrors "github.com/Roshick/go-autumn-validation/errors"
	"github.com/Roshick/go-autumn-validation/logging"
	"github.com/Roshick/go-autumn-validation/tracing"
	aulogging "github.com/StephanHCB/go-autumn-logging"
	"github.com/go-chi/render"
)

// PanicRecoveryMiddleware //

type RecoveryMiddlewareOptions struct {
	ErrorResponse render.Renderer
}

func DefaultRecoveryMiddlewareOptions() *RecoveryMiddlewareOptions {
	return &RecoveryMiddlewareOptions{
		ErrorResponse: weberrors.NewInternalServerErrorResponse(""),
	}
}

// NewPanicRecoveryMiddleware turns panics of downstream handlers, including failed error rendering
// of extractors, into the configured error response. http.ErrAbortHandler is passed through.
func NewPanicRecoveryMiddleware(opts *RecoveryMiddlewareOptions) func(next http.Handler) http.Handler {
	if opts == nil {
		opts = DefaultRecoveryMiddlewareOptions()
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				ctx := tracing.ContextWithSpanLogger(req.Context())
				aulogging.Logger.Ctx(ctx).Error().
					With(logging.LogFieldStackTrace, string(debug.Stack())).
					With(logging.LogFieldRequestID, tracing.RequestIDFromContext(ctx)).
					Printf("recovered from panic: %v", rvr)
				if err := render.Render(w, req, opts.ErrorResponse); err != nil {
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, req)
		}
		return http.HandlerFunc(fn)
	}
}
