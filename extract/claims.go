package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lestrrat-go/jwx/v3/jwt"
)

// Claims //

// NewClaimsExtractor parses the bearer token of the request and decodes its claims into T
// using `json` struct tags.
func NewClaimsExtractor[T any](opts *ClaimsOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultClaimsOptions()
	}
	parseOptions := append([]jwt.ParseOption(nil), opts.ParseOptions...)

	return newExtractor(SourceClaims, opts.Options, func(req *http.Request, dst *T) error {
		token, err := jwt.ParseRequest(req, parseOptions...)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		data, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("failed to encode token claims: %w", err)
		}
		if err = json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to decode token claims: %w", err)
		}
		return nil
	})
}

func NewClaimsMiddleware[T any](opts *ClaimsOptions) func(next http.Handler) http.Handler {
	return NewClaimsExtractor[T](opts).Middleware()
}

func ClaimsFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourceClaims)
}
