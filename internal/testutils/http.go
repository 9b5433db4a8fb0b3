package testutils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Request serves a request through h and returns the recorded response. headers are key/value pairs.
func Request(t *testing.T, ctx context.Context, h http.Handler, httpMethod, url string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	if len(headers)%2 != 0 {
		t.Fatalf("headers must be key/value pairs, got %d values", len(headers))
	}

	req := httptest.NewRequestWithContext(ctx, httpMethod, url, body)
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
