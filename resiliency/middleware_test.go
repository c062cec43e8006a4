package resiliency

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	weberrors "github.com/Roshick/go-autumn-validation/errors"
	"github.com/Roshick/go-autumn-validation/extract"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenRenderer struct{}

func (brokenRenderer) Render(http.ResponseWriter, *http.Request) error {
	return errors.New("render failed")
}

func TestDefaultRecoveryMiddlewareOptions(t *testing.T) {
	opts := DefaultRecoveryMiddlewareOptions()

	require.NotNil(t, opts)
	assert.NotNil(t, opts.ErrorResponse)
}

func TestNewPanicRecoveryMiddleware(t *testing.T) {
	t.Run("with nil options", func(t *testing.T) {
		middleware := NewPanicRecoveryMiddleware(nil)
		assert.NotNil(t, middleware)
	})

	t.Run("normal request without panic", func(t *testing.T) {
		middleware := NewPanicRecoveryMiddleware(nil)

		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		rr := httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("panic recovery", func(t *testing.T) {
		middleware := NewPanicRecoveryMiddleware(nil)
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		})

		rr := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			middleware(testHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"status":"Internal Server Error","message":"An unexpected error occurred"}`, rr.Body.String())
	})

	t.Run("custom error response", func(t *testing.T) {
		opts := DefaultRecoveryMiddlewareOptions()
		opts.ErrorResponse = weberrors.NewBadRequestResponse("nope")
		middleware := NewPanicRecoveryMiddleware(opts)

		rr := httptest.NewRecorder()
		middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(errors.New("boom"))
		})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("failed rejection rendering", func(t *testing.T) {
		extractor := extract.NewQueryExtractor[struct {
			Page int `form:"page" validate:"gte=1"`
		}](extract.DefaultQueryOptions().WithErrorHandler(func(*extract.Error, *http.Request) render.Renderer {
			return brokenRenderer{}
		}))
		handler := NewPanicRecoveryMiddleware(nil)(extractor.Middleware()(http.NotFoundHandler()))

		rr := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?page=0", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("http.ErrAbortHandler is passed through", func(t *testing.T) {
		middleware := NewPanicRecoveryMiddleware(nil)
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(http.ErrAbortHandler)
		})

		assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
			middleware(testHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}
