package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Roshick/go-autumn-validation/header"
)

// Form //

// NewFormExtractor decodes an application/x-www-form-urlencoded body into T using `form` struct tags.
func NewFormExtractor[T any](opts *FormOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultFormOptions()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultFormLimit
	}
	decoder := valuesDecoder{
		delimiter:     opts.Delimiter,
		ignoreUnknown: !opts.DisallowUnknownKeys,
	}

	return newExtractor(SourceForm, opts.Options, func(req *http.Request, dst *T) error {
		mediaType, err := requestMediaType(req)
		if err != nil {
			return err
		}
		if mediaType != header.MIMEApplicationForm {
			return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
		}

		data, err := readBody(req, limit)
		if err != nil {
			return err
		}
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse form body: %w", err)
		}
		return decoder.decode(dst, values)
	})
}

func NewFormMiddleware[T any](opts *FormOptions) func(next http.Handler) http.Handler {
	return NewFormExtractor[T](opts).Middleware()
}

func FormFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourceForm)
}
