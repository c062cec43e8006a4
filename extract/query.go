package extract

import (
	"context"
	"net/http"
)

// Query //

// NewQueryExtractor decodes the query string into T using `form` struct tags.
func NewQueryExtractor[T any](opts *QueryOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultQueryOptions()
	}
	decoder := valuesDecoder{
		delimiter:     opts.Delimiter,
		ignoreUnknown: !opts.DisallowUnknownKeys,
		ignoreCase:    opts.IgnoreCase,
	}

	return newExtractor(SourceQuery, opts.Options, func(req *http.Request, dst *T) error {
		return decoder.decode(dst, req.URL.Query())
	})
}

func NewQueryMiddleware[T any](opts *QueryOptions) func(next http.Handler) http.Handler {
	return NewQueryExtractor[T](opts).Middleware()
}

func QueryFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourceQuery)
}
