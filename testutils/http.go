package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Roshick/go-autumn-validation/header"
	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/stretchr/testify/require"
)

type TestResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   any         `json:"body,omitempty"`
}

func (r *TestResponse) RequireEqualStatus(t *testing.T, status int) *TestResponse {
	require.Equal(t, status, r.Status)
	return r
}

func (r *TestResponse) RequireEqualBody(t *testing.T, body any) *TestResponse {
	require.Equal(t, body, r.Body)
	return r
}

// RequireViolations decodes the body as a list of violations.
func (r *TestResponse) RequireViolations(t *testing.T) validation.Violations {
	data, err := json.Marshal(r.Body)
	require.NoError(t, err)

	var violations validation.Violations
	require.NoError(t, json.Unmarshal(data, &violations), "response body is not a violation list: %s", data)
	return violations
}

func MustParseResponse(t *testing.T, res *http.Response) *TestResponse {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %s", err)
	}
	defer res.Body.Close()

	var parsedBody any
	mediaType, _, _ := mime.ParseMediaType(res.Header.Get(header.ContentType))
	switch mediaType {
	case header.MIMEApplicationJSON:
		if innerErr := json.Unmarshal(body, &parsedBody); innerErr != nil {
			t.Fatalf("failed to parse response: %s", innerErr)
		}
	default:
		parsedBody = string(body)
	}

	return &TestResponse{
		Status: res.StatusCode,
		Header: res.Header,
		Body:   parsedBody,
	}
}

// Serve runs the request against the handler and parses the recorded response.
func Serve(t *testing.T, handler http.Handler, req *http.Request) *TestResponse {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return MustParseResponse(t, rr.Result())
}

func NewJSONRequest(t *testing.T, method string, target string, body any) *http.Request {
	var reader io.Reader
	switch typed := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(typed)
	default:
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(header.ContentType, header.MIMEApplicationJSON)
	return req
}

func NewFormRequest(method string, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(header.ContentType, header.MIMEApplicationForm)
	return req
}
