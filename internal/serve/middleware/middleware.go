package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/stellar/go-stellar-sdk/support/http/mutil"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httperror"
	"github.com/stellar/stellar-verify-sender/internal/utils"
)

// RecoverHandler turns panics into a 500 response. The panic is reported through httperror.InternalError.
func RecoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}

			// the client is gone, let net/http handle it
			if errors.Is(err, http.ErrAbortHandler) {
				panic(err)
			}

			httperror.InternalError(req.Context(), "", err, nil).Render(rw)
		}()

		next.ServeHTTP(rw, req)
	})
}

// MetricsRequestHandler records the duration of every request, labelled by route pattern, method and status.
func MetricsRequestHandler(monitorService monitor.MonitorServiceInterface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			mw := chimiddleware.NewWrapResponseWriter(rw, req.ProtoMajor)
			then := time.Now()
			next.ServeHTTP(mw, req)

			labels := monitor.HTTPRequestLabels{
				Status: fmt.Sprintf("%d", mw.Status()),
				Route:  utils.GetRoutePattern(req),
				Method: req.Method,
			}
			if err := monitorService.MonitorHTTPRequestDuration(time.Since(then), labels); err != nil {
				log.Ctx(req.Context()).Errorf("Error trying to monitor request time: %s", err)
			}
		})
	}
}

// LoggingMiddleware logs the start and the end of every request with a request-scoped logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		mw := mutil.WrapWriter(rw)

		reqCtx := req.Context()
		logCtx := log.Set(reqCtx, log.Ctx(reqCtx).WithFields(log.F{
			"method": req.Method,
			"path":   req.URL.String(),
			"req":    chimiddleware.GetReqID(reqCtx),
		}))
		req = req.WithContext(logCtx)

		logRequestStart(req)
		started := time.Now()

		next.ServeHTTP(mw, req)
		logRequestEnd(req, mw, time.Since(started))
	})
}

func logRequestStart(req *http.Request) {
	log.Ctx(req.Context()).WithFields(log.F{
		"subsys":    "http",
		"ip":        req.RemoteAddr,
		"host":      req.Host,
		"useragent": req.Header.Get("User-Agent"),
	}).Info("starting request")
}

func logRequestEnd(req *http.Request, mw mutil.WriterProxy, duration time.Duration) {
	l := log.Ctx(req.Context()).WithFields(log.F{
		"subsys":   "http",
		"status":   mw.Status(),
		"bytes":    mw.BytesWritten(),
		"duration": duration,
	})
	if routeContext := chi.RouteContext(req.Context()); routeContext != nil {
		l = l.WithField("route", routeContext.RoutePattern())
	}

	l.Info("finished request")
}

// RateLimitByIP allows up to requestLimit requests per window from the same client IP. The IP is taken from
// RemoteAddr, which only reflects proxy headers when chimiddleware.RealIP runs first.
func RateLimitByIP(requestLimit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			log.Ctx(r.Context()).Warnf("Rate limit exceeded for %s", r.URL.Path)
			httperror.TooManyRequests("").Render(w)
		}),
	)
}

// MaxBodySize rejects request bodies larger than maxBytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(rw, req.Body, maxBytes)
			next.ServeHTTP(rw, req)
		})
	}
}

// CorsMiddleware lets browsers on the allowed origins call the API.
func CorsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	})
	return c.Handler
}
