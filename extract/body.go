package extract

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/Roshick/go-autumn-validation/header"
)

func requestMediaType(req *http.Request) (string, error) {
	contentType := req.Header.Get(header.ContentType)
	if contentType == "" {
		return "", fmt.Errorf("%w: missing %s header", ErrUnsupportedMediaType, header.ContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}
	return mediaType, nil
}

// readBody reads at most limit bytes. Larger bodies fail with ErrPayloadTooLarge.
func readBody(req *http.Request, limit int64) ([]byte, error) {
	if req.ContentLength > limit {
		return nil, fmt.Errorf("%w: content length %d exceeds limit of %d bytes", ErrPayloadTooLarge, req.ContentLength, limit)
	}
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: body exceeds limit of %d bytes", ErrPayloadTooLarge, limit)
	}
	return data, nil
}
