package serve

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	supporthttp "github.com/stellar/go-stellar-sdk/support/http"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httperror"
	"github.com/stellar/stellar-verify-sender/internal/serve/httphandler"
	"github.com/stellar/stellar-verify-sender/internal/serve/middleware"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

const (
	ServiceID = "serve"

	DefaultRateLimitPerMinute = 60
	maxRequestBodyBytes       = 10 * 1024
)

type HTTPServerInterface interface {
	Run(conf supporthttp.Config)
}

type HTTPServer struct{}

func (h *HTTPServer) Run(conf supporthttp.Config) {
	supporthttp.Run(conf)
}

type ServeOptions struct {
	Environment        string
	GitCommit          string
	Port               int
	Version            string
	RateLimitPerMinute int
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP. Only enable it behind a proxy that
	// overwrites those headers, otherwise callers can pick their own rate limit bucket.
	TrustProxyHeaders bool
	// CorsAllowedOrigins enables CORS for the listed origins. CORS is off when empty.
	CorsAllowedOrigins []string
	MonitorService     monitor.MonitorServiceInterface
	CrashTrackerClient crashtracker.CrashTrackerClient
	VerifySender       verify.VerifySenderInterface
}

func (opts ServeOptions) Validate() error {
	if opts.MonitorService == nil {
		return fmt.Errorf("monitor service cannot be nil")
	}
	if opts.CrashTrackerClient == nil {
		return fmt.Errorf("crash tracker client cannot be nil")
	}
	if opts.VerifySender == nil {
		return fmt.Errorf("verify sender cannot be nil")
	}
	if opts.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limit per minute cannot be negative")
	}
	return nil
}

func Serve(opts ServeOptions, httpServer HTTPServerInterface) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("validating serve options: %w", err)
	}

	httperror.SetDefaultReportErrorFunc(opts.CrashTrackerClient.LogAndReportErrors)

	listenAddr := fmt.Sprintf(":%d", opts.Port)
	serverConfig := supporthttp.Config{
		ListenAddr:          listenAddr,
		Handler:             handleHTTP(opts),
		TCPKeepAlive:        time.Minute * 3,
		ShutdownGracePeriod: time.Second * 50,
		ReadTimeout:         time.Second * 5,
		// outbound provider calls retry for up to a few seconds on top of the transport timeout
		WriteTimeout: time.Second * 60,
		IdleTimeout:  time.Minute * 2,
		OnStarting: func() {
			log.Info("Starting Verify Sender Server")
			log.Infof("Listening on %s", listenAddr)
		},
		OnStopping: func() {
			opts.CrashTrackerClient.FlushEvents(2 * time.Second)
			log.Info("Stopping Verify Sender Server")
		},
	}
	httpServer.Run(serverConfig)
	return nil
}

func handleHTTP(o ServeOptions) *chi.Mux {
	mux := chi.NewMux()

	rateLimit := o.RateLimitPerMinute
	if rateLimit == 0 {
		rateLimit = DefaultRateLimitPerMinute
	}

	mux.Use(chimiddleware.RequestID)
	if o.TrustProxyHeaders {
		mux.Use(chimiddleware.RealIP)
	}
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.RecoverHandler)
	mux.Use(middleware.MetricsRequestHandler(o.MonitorService))
	mux.Use(middleware.MaxBodySize(maxRequestBodyBytes))
	if len(o.CorsAllowedOrigins) > 0 {
		mux.Use(middleware.CorsMiddleware(o.CorsAllowedOrigins))
	}

	mux.Get("/health", httphandler.HealthHandler{
		Version:        o.Version,
		ServiceID:      ServiceID,
		ReleaseID:      o.GitCommit,
		MonitorService: o.MonitorService,
	}.ServeHTTP)

	mux.With(middleware.RateLimitByIP(rateLimit, time.Minute)).Route("/verifications", func(r chi.Router) {
		handler := httphandler.VerificationHandler{VerifySender: o.VerifySender}
		r.Post("/", handler.PostVerification)
		r.Post("/{sid}/approve", handler.ApproveVerification)
	})

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperror.NotFound("", nil, nil).Render(w)
	})

	return mux
}
