package extract

import (
	"context"
	"encoding"
	"fmt"
	"net/http"
	"net/url"
	"reflect"

	"github.com/go-chi/chi/v5"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// Path //

// NewPathExtractor decodes path parameters into T. A struct T uses `form` tags named after the
// route parameters; a scalar T receives the only parameter.
func NewPathExtractor[T any](opts *PathOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultPathOptions()
	}
	paramsFn := opts.ParamsFn
	if paramsFn == nil {
		paramsFn = ChiURLParams
	}
	decoder := valuesDecoder{delimiter: DefaultQueryDelimiter}
	scalar := isScalar(reflect.TypeFor[T]())

	return newExtractor(SourcePath, opts.Options, func(req *http.Request, dst *T) error {
		params := paramsFn(req)
		if !scalar {
			return decoder.decode(dst, params)
		}

		if len(params) != 1 {
			return fmt.Errorf("expected exactly one path parameter, got %d", len(params))
		}
		var value string
		for _, values := range params {
			value = values[0]
		}
		return decodeScalar(decoder, dst, value)
	})
}

type scalarValue[T any] struct {
	Value T `form:"value"`
}

func decodeScalar[T any](decoder valuesDecoder, dst *T, value string) error {
	if unmarshaler, ok := any(dst).(encoding.TextUnmarshaler); ok {
		if err := unmarshaler.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("failed to decode value: %w", err)
		}
		return nil
	}

	var wrapper scalarValue[T]
	if err := decoder.decode(&wrapper, url.Values{"value": {value}}); err != nil {
		return err
	}
	*dst = wrapper.Value
	return nil
}

func NewPathMiddleware[T any](opts *PathOptions) func(next http.Handler) http.Handler {
	return NewPathExtractor[T](opts).Middleware()
}

func PathFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourcePath)
}

// ChiURLParams returns the unescaped URL parameters of the matched chi route. The catch-all
// parameter added by mounted subrouters is left out.
func ChiURLParams(req *http.Request) url.Values {
	params := url.Values{}
	routeCtx := chi.RouteContext(req.Context())
	if routeCtx == nil {
		return params
	}
	for i, key := range routeCtx.URLParams.Keys {
		if key == "*" {
			continue
		}
		value := routeCtx.URLParams.Values[i]
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		params.Set(key, value)
	}
	return params
}

func isScalar(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Implements(textUnmarshalerType) || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return false
	}
	return true
}
