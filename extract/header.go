package extract

import (
	"context"
	"net/http"
	"net/url"
)

// Header //

// NewHeaderExtractor decodes request headers into T. Field names in `form` tags match
// header names case-insensitively; repeated headers fill slices.
func NewHeaderExtractor[T any](opts *HeaderOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultHeaderOptions()
	}
	decoder := valuesDecoder{
		delimiter:     DefaultQueryDelimiter,
		ignoreUnknown: true,
		ignoreCase:    true,
	}

	return newExtractor(SourceHeader, opts.Options, func(req *http.Request, dst *T) error {
		return decoder.decode(dst, url.Values(req.Header))
	})
}

func NewHeaderMiddleware[T any](opts *HeaderOptions) func(next http.Handler) http.Handler {
	return NewHeaderExtractor[T](opts).Middleware()
}

func HeaderFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourceHeader)
}
