package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httperror"
)

func Test_RecoverHandler(t *testing.T) {
	var reportedErr error
	httperror.SetDefaultReportErrorFunc(func(ctx context.Context, err error, msg string) {
		reportedErr = err
	})
	defer httperror.SetDefaultReportErrorFunc(func(ctx context.Context, err error, msg string) {})

	r := chi.NewRouter()
	r.Use(RecoverHandler)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{
		"error": "An internal error occurred while processing this request.",
		"error_code": "500_0"
	}`, rr.Body.String())
	assert.EqualError(t, reportedErr, "panic: test panic")
}

func Test_RecoverHandler_doesNotRecoverFromErrAbortHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RecoverHandler)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	require.PanicsWithError(t, http.ErrAbortHandler.Error(), func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func Test_MetricsRequestHandler(t *testing.T) {
	mMonitorService := &monitor.MockMonitorService{}

	r := chi.NewRouter()
	r.Use(MetricsRequestHandler(mMonitorService))
	r.Post("/verifications/{sid}/approve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("known route uses its pattern", func(t *testing.T) {
		mMonitorService.
			On("MonitorHTTPRequestDuration", mock.AnythingOfType("time.Duration"), monitor.HTTPRequestLabels{
				Status: "200",
				Route:  "/verifications/{sid}/approve",
				Method: http.MethodPost,
			}).
			Return(nil).
			Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/verifications/VE123/approve", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		mMonitorService.
			On("MonitorHTTPRequestDuration", mock.AnythingOfType("time.Duration"), monitor.HTTPRequestLabels{
				Status: "404",
				Route:  "undefined",
				Method: http.MethodGet,
			}).
			Return(nil).
			Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/unknown", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("monitor errors are only logged", func(t *testing.T) {
		mMonitorService.
			On("MonitorHTTPRequestDuration", mock.AnythingOfType("time.Duration"), mock.AnythingOfType("monitor.HTTPRequestLabels")).
			Return(errors.New("client was not initialized")).
			Once()

		getEntries := log.DefaultLogger.StartTest(log.ErrorLevel)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/verifications/VE123/approve", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		entries := getEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Error trying to monitor request time: client was not initialized", entries[0].Message)
	})

	mMonitorService.AssertExpectations(t)
}

func Test_LoggingMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("ok"))
		require.NoError(t, err)
	})

	getEntries := log.DefaultLogger.StartTest(log.DebugLevel)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	entries := getEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "starting request", entries[0].Message)
	assert.Equal(t, "finished request", entries[1].Message)
	assert.Equal(t, http.StatusOK, entries[1].Data["status"])
	assert.Equal(t, "/health", entries[1].Data["route"])
	assert.Equal(t, http.MethodGet, entries[1].Data["method"])
}

func Test_RateLimitByIP(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RateLimitByIP(2, time.Minute))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	limited := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.JSONEq(t, `{"error": "Too many requests, please try again later.", "error_code": "429_0"}`, limited.Body.String())

	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
}

func Test_MaxBodySize(t *testing.T) {
	testCases := []struct {
		name     string
		bodySize int
		want     int
	}{
		{name: "under the limit", bodySize: 50, want: http.StatusOK},
		{name: "at the limit", bodySize: 100, want: http.StatusOK},
		{name: "over the limit", bodySize: 101, want: http.StatusRequestEntityTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(MaxBodySize(100))
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				if _, err := io.ReadAll(r.Body); err != nil {
					http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
					return
				}
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", tc.bodySize))))
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func Test_CorsMiddleware(t *testing.T) {
	handler := CorsMiddleware([]string{"https://app.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/verifications", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	t.Run("allowed origin", func(t *testing.T) {
		rr := preflight("https://app.example.com")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("unknown origin", func(t *testing.T) {
		rr := preflight("https://evil.example.com")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request reaches the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/verifications", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
