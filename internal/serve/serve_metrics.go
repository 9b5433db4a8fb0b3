package serve

import (
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	supporthttp "github.com/stellar/go-stellar-sdk/support/http"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
)

type MetricsServeOptions struct {
	Port        int
	Environment string

	MonitorService monitor.MonitorServiceInterface
	MetricType     monitor.MetricType
}

func MetricsServe(opts MetricsServeOptions, httpServer HTTPServerInterface) error {
	handler, err := handleMetricsHTTP(opts)
	if err != nil {
		return fmt.Errorf("creating metrics handler: %w", err)
	}

	metricsAddr := fmt.Sprintf(":%d", opts.Port)
	httpServer.Run(supporthttp.Config{
		ListenAddr:   metricsAddr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  2 * time.Minute,
		OnStarting: func() {
			log.Infof("Starting %s Metrics Server", opts.MetricType)
			log.Infof("Listening on %s", metricsAddr)
		},
		OnStopping: func() {
			log.Infof("Stopping %s Metrics Server", opts.MetricType)
		},
	})
	return nil
}

func handleMetricsHTTP(opts MetricsServeOptions) (*chi.Mux, error) {
	metricHTTPHandler, err := opts.MonitorService.GetMetricHTTPHandler()
	if err != nil {
		return nil, fmt.Errorf("getting metric http.handler: %w", err)
	}

	mux := chi.NewMux()
	mux.Handle("/metrics", metricHTTPHandler)
	return mux, nil
}
