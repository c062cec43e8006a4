package extract

import (
	"net/http"

	"github.com/Roshick/go-autumn-validation/logging"
	"github.com/Roshick/go-autumn-validation/metrics"
	"github.com/Roshick/go-autumn-validation/tracing"
	"github.com/go-chi/render"
)

// Rejecter turns failed extractions into responses. Every rejection is logged at debug level,
// counted and recorded as a span event before the error handler renders the response.
type Rejecter struct {
	source       Source
	errorHandler ErrorHandlerFn
	rejections   *metrics.RejectionCounter
}

func NewRejecter(source Source, errorHandler ErrorHandlerFn) *Rejecter {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}
	return &Rejecter{
		source:       source,
		errorHandler: errorHandler,
		rejections:   metrics.NewRejectionCounter(nil),
	}
}

// Reject renders the configured error response for a failed extraction. Errors other than
// *Error are reported as internal failures. Panics if the response cannot be rendered.
func (r *Rejecter) Reject(w http.ResponseWriter, req *http.Request, err error) {
	extractErr, ok := AsError(err)
	if !ok {
		extractErr = &Error{Source: r.source, Reason: ReasonInternal, Err: err}
	}

	ctx := tracing.ContextWithSpanLogger(req.Context())
	logging.LogRejection(ctx, req, logging.Rejection{
		Source:         extractErr.Source.String(),
		Reason:         extractErr.Reason.String(),
		ViolationCount: len(extractErr.Violations),
		Err:            extractErr,
	})
	tracing.AnnotateRejection(ctx, extractErr.Source.String(), extractErr.Reason.String(), len(extractErr.Violations))
	r.rejections.Record(req, extractErr.Source.String(), extractErr.Reason.String())

	if renderErr := render.Render(w, req, r.errorHandler(extractErr, req)); renderErr != nil {
		panic(renderErr)
	}
}
