package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Roshick/go-autumn-validation/header"
)

// JSON //

func NewJSONExtractor[T any](opts *JSONOptions) *Extractor[T] {
	if opts == nil {
		opts = DefaultJSONOptions()
	}
	settings := *opts
	if settings.Limit <= 0 {
		settings.Limit = DefaultJSONLimit
	}

	nullable := isNullable(reflect.TypeFor[T]())

	return newExtractor(SourceJSON, settings.Options, func(req *http.Request, dst *T) error {
		return decodeJSON(req, dst, nullable, &settings)
	})
}

func NewJSONMiddleware[T any](opts *JSONOptions) func(next http.Handler) http.Handler {
	return NewJSONExtractor[T](opts).Middleware()
}

func JSONFromContext[T any](ctx context.Context) T {
	return FromContext[T](ctx, SourceJSON)
}

// IsJSONMediaType accepts application/json and any media type with a +json suffix.
func IsJSONMediaType(mediaType string) bool {
	return mediaType == header.MIMEApplicationJSON || strings.HasSuffix(mediaType, header.MIMEJSONSuffix)
}

func decodeJSON(req *http.Request, dst any, nullable bool, opts *JSONOptions) error {
	mediaType, err := requestMediaType(req)
	if err != nil {
		return err
	}
	if !IsJSONMediaType(mediaType) && (opts.ContentType == nil || !opts.ContentType(mediaType)) {
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}

	data, err := readBody(req, opts.Limit)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ErrEmptyBody
	}
	if !nullable && bytes.Equal(trimmed, []byte("null")) {
		return ErrNullBody
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	if opts.DisallowUnknownFields {
		decoder.DisallowUnknownFields()
	}
	if err = decoder.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode JSON body: %w", err)
	}
	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return errors.New("failed to decode JSON body: unexpected data after top-level value")
	}
	return nil
}

// isNullable reports whether a JSON null is a meaningful value for t.
func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		return true
	}
	return false
}
