package extract

import (
	"context"
	"net/http"
	"reflect"

	"github.com/Roshick/go-autumn-validation/validation"
)

type decodeFn[T any] func(req *http.Request, dst *T) error

// Extractor decodes one request part into T and validates the result. It holds a private copy
// of its configuration and is safe for concurrent use.
type Extractor[T any] struct {
	*Rejecter
	source    Source
	decode    decodeFn[T]
	validator validation.Validator
}

func newExtractor[T any](source Source, opts Options, decode decodeFn[T]) *Extractor[T] {
	validator := opts.Validator
	if validator == nil {
		validator = validation.DefaultStructValidator()
	}

	return &Extractor[T]{
		Rejecter:  NewRejecter(source, opts.ErrorHandler),
		source:    source,
		decode:    decode,
		validator: validator,
	}
}

func (e *Extractor[T]) Source() Source {
	return e.source
}

// Extract decodes and validates. Validation only runs on successfully decoded values.
// The returned error is always an *Error.
func (e *Extractor[T]) Extract(req *http.Request) (T, error) {
	var value T
	if err := e.decode(req, &value); err != nil {
		var zero T
		return zero, newDecodeError(e.source, err)
	}
	if err := e.validator.Validate(req.Context(), validationTarget(&value)); err != nil {
		var zero T
		return zero, newValidateError(e.source, err)
	}
	return value, nil
}

// validationTarget hands pointer types to the validator as they are and everything else by address.
func validationTarget[T any](value *T) any {
	if reflect.TypeFor[T]().Kind() == reflect.Pointer {
		return *value
	}
	return value
}

// Middleware stores the extracted value in the request context, see FromContext.
func (e *Extractor[T]) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, req *http.Request) {
			value, err := e.Extract(req)
			if err != nil {
				e.Reject(w, req, err)
				return
			}
			next.ServeHTTP(w, req.WithContext(ContextWithValue(req.Context(), e.source, value)))
		}
		return http.HandlerFunc(fn)
	}
}

// HandlerFunc adapts a handler that receives the extracted value as argument.
func (e *Extractor[T]) HandlerFunc(fn func(w http.ResponseWriter, req *http.Request, value T)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		value, err := e.Extract(req)
		if err != nil {
			e.Reject(w, req, err)
			return
		}
		fn(w, req, value)
	}
}

type contextKey[T any] struct {
	source Source
}

func LookupFromContext[T any](ctx context.Context, source Source) (T, bool) {
	value, ok := ctx.Value(contextKey[T]{source: source}).(T)
	return value, ok
}

// FromContext returns the value stored by an extractor middleware, or the zero value.
func FromContext[T any](ctx context.Context, source Source) T {
	value, _ := LookupFromContext[T](ctx, source)
	return value
}

func ContextWithValue[T any](ctx context.Context, source Source, value T) context.Context {
	return context.WithValue(ctx, contextKey[T]{source: source}, value)
}
