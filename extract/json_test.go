package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Roshick/go-autumn-validation/testutils"
	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCreateUser struct {
	Name  string `json:"name" validate:"required,min=3"`
	Age   int    `json:"age" validate:"gte=18"`
	Email string `json:"email" validate:"required,email"`
}

func TestDefaultJSONOptions(t *testing.T) {
	opts := DefaultJSONOptions()

	require.NotNil(t, opts)
	assert.Equal(t, int64(32768), opts.Limit)
	assert.Nil(t, opts.ContentType)
	assert.False(t, opts.DisallowUnknownFields)
	assert.Nil(t, opts.Validator)
	assert.Nil(t, opts.ErrorHandler)
}

func TestJSONOptions_Builder(t *testing.T) {
	handler := func(err *Error, req *http.Request) render.Renderer { return nil }
	opts := DefaultJSONOptions().
		WithLimit(10).
		WithContentType(func(string) bool { return true }).
		WithDisallowUnknownFields(true).
		WithValidator(validation.Noop()).
		WithErrorHandler(handler)

	assert.Equal(t, int64(10), opts.Limit)
	assert.NotNil(t, opts.ContentType)
	assert.True(t, opts.DisallowUnknownFields)
	assert.NotNil(t, opts.Validator)
	assert.NotNil(t, opts.ErrorHandler)
}

func TestNewJSONExtractor(t *testing.T) {
	t.Run("with nil options", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)
		require.NotNil(t, extractor)
		assert.Equal(t, SourceJSON, extractor.Source())
	})

	t.Run("valid payload reaches the handler unchanged", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)

		handlerCalled := false
		var received testCreateUser
		handler := extractor.HandlerFunc(func(w http.ResponseWriter, r *http.Request, value testCreateUser) {
			handlerCalled = true
			received = value
			w.WriteHeader(http.StatusCreated)
		})

		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"}`)
		res := testutils.Serve(t, handler, req)

		assert.True(t, handlerCalled)
		res.RequireEqualStatus(t, http.StatusCreated)
		assert.Equal(t, testCreateUser{Name: "Alice", Age: 30, Email: "alice@example.com"}, received)
	})

	t.Run("every failed rule is reported", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)

		handlerCalled := false
		handler := extractor.HandlerFunc(func(w http.ResponseWriter, r *http.Request, value testCreateUser) {
			handlerCalled = true
		})

		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Al","age":12}`)
		res := testutils.Serve(t, handler, req)

		assert.False(t, handlerCalled)
		res.RequireEqualStatus(t, http.StatusBadRequest)
		assert.Equal(t, validation.Violations{
			{Field: "name", Code: "min", Message: "name must be at least 3 characters in length"},
			{Field: "age", Code: "gte", Message: "age must be 18 or greater"},
			{Field: "email", Code: "required", Message: "email is a required field"},
		}, res.RequireViolations(t))
	})

	t.Run("malformed payload never reaches validation", func(t *testing.T) {
		validatorCalled := false
		opts := DefaultJSONOptions().WithValidator(validation.ValidatorFunc(func(context.Context, any) error {
			validatorCalled = true
			return nil
		}))
		extractor := NewJSONExtractor[testCreateUser](opts)

		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name": 12`)
		_, err := extractor.Extract(req)

		require.Error(t, err)
		assert.False(t, validatorCalled)
		extractErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonDeserialize, extractErr.Reason)
		assert.Equal(t, SourceJSON, extractErr.Source)
	})

	t.Run("null payload is a deserialize error", func(t *testing.T) {
		validatorCalled := false
		opts := DefaultJSONOptions().WithValidator(validation.ValidatorFunc(func(context.Context, any) error {
			validatorCalled = true
			return nil
		}))

		_, err := NewJSONExtractor[testCreateUser](opts).Extract(testutils.NewJSONRequest(t, http.MethodPost, "/users", ` null `))

		assert.ErrorIs(t, err, ErrNullBody)
		assert.False(t, validatorCalled)
		extractErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonDeserialize, extractErr.Reason)
	})

	t.Run("null payload into a map", func(t *testing.T) {
		value, err := NewJSONExtractor[map[string]any](nil).Extract(testutils.NewJSONRequest(t, http.MethodPost, "/users", `null`))

		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("type mismatch renders bad request", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":"old"}`)

		res := testutils.Serve(t, extractor.HandlerFunc(func(http.ResponseWriter, *http.Request, testCreateUser) {}), req)

		res.RequireEqualStatus(t, http.StatusBadRequest)
		body, ok := res.Body.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Bad Request", body["status"])
		assert.Contains(t, body["message"], "json extraction failed (deserialize)")
	})
}

func TestJSONExtractor_PointerTarget(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		value, err := NewJSONExtractor[*testCreateUser](nil).Extract(
			testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"}`),
		)

		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, testCreateUser{Name: "Alice", Age: 30, Email: "alice@example.com"}, *value)
	})

	t.Run("invalid payload renders violations", func(t *testing.T) {
		extractor := NewJSONExtractor[*testCreateUser](nil)
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Al","age":30,"email":"alice@example.com"}`)

		res := testutils.Serve(t, extractor.HandlerFunc(func(http.ResponseWriter, *http.Request, *testCreateUser) {}), req)

		res.RequireEqualStatus(t, http.StatusBadRequest)
		violations := res.RequireViolations(t)
		require.Len(t, violations, 1)
		assert.Equal(t, "name", violations[0].Field)
	})

	t.Run("validator receives the pointer itself", func(t *testing.T) {
		var received any
		opts := DefaultJSONOptions().WithValidator(validation.ValidatorFunc(func(_ context.Context, value any) error {
			received = value
			return nil
		}))

		value, err := NewJSONExtractor[*testCreateUser](opts).Extract(testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice"}`))

		require.NoError(t, err)
		assert.Same(t, value, received)
	})
}

func TestJSONExtractor_ContentType(t *testing.T) {
	payload := `{"name":"Alice","age":30,"email":"alice@example.com"}`

	tests := []struct {
		name           string
		contentType    string
		opts           *JSONOptions
		expectedReason Reason
	}{
		{name: "application/json", contentType: "application/json"},
		{name: "with charset", contentType: "application/json; charset=utf-8"},
		{name: "json suffix", contentType: "application/merge-patch+json"},
		{name: "missing", contentType: "", expectedReason: ReasonContentType},
		{name: "plain text", contentType: "text/plain", expectedReason: ReasonContentType},
		{name: "invalid", contentType: "application/", expectedReason: ReasonContentType},
		{
			name:        "custom predicate",
			contentType: "text/plain",
			opts:        DefaultJSONOptions().WithContentType(func(mediaType string) bool { return mediaType == "text/plain" }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewJSONExtractor[testCreateUser](tt.opts)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(payload))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			value, err := extractor.Extract(req)
			if tt.expectedReason == "" {
				require.NoError(t, err)
				assert.Equal(t, "Alice", value.Name)
				return
			}

			extractErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedReason, extractErr.Reason)
			assert.ErrorIs(t, err, ErrUnsupportedMediaType)
		})
	}

	t.Run("renders unsupported media type", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(payload))
		req.Header.Set("Content-Type", "text/plain")

		res := testutils.Serve(t, extractor.Middleware()(http.NotFoundHandler()), req)

		res.RequireEqualStatus(t, http.StatusUnsupportedMediaType)
	})
}

func TestJSONExtractor_Body(t *testing.T) {
	t.Run("payload too large", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](DefaultJSONOptions().WithLimit(16))
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"}`)

		res := testutils.Serve(t, extractor.Middleware()(http.NotFoundHandler()), req)

		res.RequireEqualStatus(t, http.StatusRequestEntityTooLarge)
	})

	t.Run("payload too large without content length", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](DefaultJSONOptions().WithLimit(16))
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"}`)
		req.ContentLength = -1

		_, err := extractor.Extract(req)

		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](DefaultJSONOptions().WithLimit(0))
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"}`)

		_, err := extractor.Extract(req)

		assert.NoError(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", nil)

		_, err := extractor.Extract(req)

		assert.ErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("trailing data", func(t *testing.T) {
		extractor := NewJSONExtractor[testCreateUser](nil)
		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", `{"name":"Alice","age":30,"email":"alice@example.com"} {}`)

		_, err := extractor.Extract(req)

		extractErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, ReasonDeserialize, extractErr.Reason)
	})

	t.Run("unknown fields", func(t *testing.T) {
		payload := `{"name":"Alice","age":30,"email":"alice@example.com","admin":true}`

		_, err := NewJSONExtractor[testCreateUser](nil).Extract(testutils.NewJSONRequest(t, http.MethodPost, "/", payload))
		assert.NoError(t, err)

		strict := NewJSONExtractor[testCreateUser](DefaultJSONOptions().WithDisallowUnknownFields(true))
		_, err = strict.Extract(testutils.NewJSONRequest(t, http.MethodPost, "/", payload))
		assert.Error(t, err)
	})
}

func TestNewJSONMiddleware(t *testing.T) {
	t.Run("with nil options", func(t *testing.T) {
		middleware := NewJSONMiddleware[testCreateUser](nil)
		assert.NotNil(t, middleware)
	})

	t.Run("stores value in context", func(t *testing.T) {
		middleware := NewJSONMiddleware[testCreateUser](nil)

		handlerCalled := false
		var received testCreateUser
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			received = JSONFromContext[testCreateUser](r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", testCreateUser{Name: "Alice", Age: 30, Email: "alice@example.com"})
		rr := httptest.NewRecorder()

		middleware(testHandler).ServeHTTP(rr, req)

		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "alice@example.com", received.Email)
	})

	t.Run("invalid payload stops the chain", func(t *testing.T) {
		middleware := NewJSONMiddleware[testCreateUser](nil)

		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		req := testutils.NewJSONRequest(t, http.MethodPost, "/users", testCreateUser{Name: "Alice", Age: 30})
		rr := httptest.NewRecorder()

		middleware(testHandler).ServeHTTP(rr, req)

		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `[{"field":"email","code":"required","message":"email is a required field"}]`, rr.Body.String())
	})
}
