package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Roshick/go-autumn-validation/extract"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type tokenContextKey struct{}

func TokenFromContext(ctx context.Context) jwt.Token {
	token, _ := ctx.Value(tokenContextKey{}).(jwt.Token)
	return token
}

func ContextWithToken(ctx context.Context, token jwt.Token) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// AuthenticationMiddleware //

type AuthenticationMiddlewareOptions struct {
	// ParseOptions must provide verification keys, e.g. jwt.WithKey or WithRemoteKeySet.
	// Without them every request is rejected.
	ParseOptions []jwt.ParseOption
	ErrorHandler extract.ErrorHandlerFn
}

func DefaultAuthenticationMiddlewareOptions() *AuthenticationMiddlewareOptions {
	return &AuthenticationMiddlewareOptions{
		ErrorHandler: extract.DefaultErrorHandler,
	}
}

// NewAuthenticationMiddleware verifies the bearer token and stores it in the request context.
// Claims extractors mounted behind it may skip signature verification.
func NewAuthenticationMiddleware(opts *AuthenticationMiddlewareOptions) func(next http.Handler) http.Handler {
	if opts == nil {
		opts = DefaultAuthenticationMiddlewareOptions()
	}
	parseOptions := append([]jwt.ParseOption(nil), opts.ParseOptions...)
	rejecter := extract.NewRejecter(extract.SourceClaims, opts.ErrorHandler)

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			token, err := jwt.ParseRequest(req, parseOptions...)
			if err != nil {
				rejecter.Reject(w, req, &extract.Error{
					Source: extract.SourceClaims,
					Reason: extract.ReasonDeserialize,
					Err:    fmt.Errorf("%w: %v", extract.ErrInvalidToken, err),
				})
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithToken(req.Context(), token)))
		}
		return http.HandlerFunc(fn)
	}
}
