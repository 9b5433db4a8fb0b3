package monitor

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stellar/go-stellar-sdk/support/log"
)

type prometheusClient struct {
	httpHandler http.Handler
	metrics     *prometheusMetrics
}

func (prometheusClient) GetMetricType() MetricType {
	return MetricTypePrometheus
}

func (p *prometheusClient) GetMetricHTTPHandler() http.Handler {
	return p.httpHandler
}

func (p *prometheusClient) MonitorHTTPRequestDuration(duration time.Duration, labels HTTPRequestLabels) {
	p.metrics.summaryVecs[HTTPRequestDurationTag].With(prometheus.Labels{
		"status": labels.Status,
		"route":  labels.Route,
		"method": labels.Method,
	}).Observe(duration.Seconds())
}

func (p *prometheusClient) MonitorCounters(tag MetricTag, labels map[string]string) {
	counterVecMetric, ok := p.metrics.counterVecs[tag]
	if !ok {
		log.Errorf("metric not registered in Prometheus CounterVecMetrics: %s", tag)
		return
	}

	counter, err := counterVecMetric.GetMetricWith(labels)
	if err != nil {
		log.Errorf("invalid labels for metric %s: %v", tag, err)
		return
	}
	counter.Inc()
}

func (p *prometheusClient) MonitorHistogram(value float64, tag MetricTag, labels map[string]string) {
	histogramVecMetric, ok := p.metrics.histogramVecs[tag]
	if !ok {
		log.Errorf("metric not registered in Prometheus HistogramVecMetrics: %s", tag)
		return
	}

	histogram, err := histogramVecMetric.GetMetricWith(labels)
	if err != nil {
		log.Errorf("invalid labels for metric %s: %v", tag, err)
		return
	}
	histogram.Observe(value)
}

// NewPrometheusClient creates a client with its own registry, so several clients never collide on metric names. When
// an environment is given, every metric is labelled with it. Go runtime and process metrics are exported too.
func NewPrometheusClient(opts MetricOptions) (*prometheusClient, error) {
	metricsRegistry := prometheus.NewRegistry()
	var registerer prometheus.Registerer = metricsRegistry
	if opts.Environment != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"environment": opts.Environment}, metricsRegistry)
	}

	runtimeCollectors := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, collector := range runtimeCollectors {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("registering runtime collector: %w", err)
		}
	}

	metrics := newPrometheusMetrics()
	var metricTag MetricTag
	for _, tag := range metricTag.ListAll() {
		collector, ok := metrics.collector(tag)
		if !ok {
			return nil, fmt.Errorf("metric not registered in prometheus metrics: %s", tag)
		}
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("registering metric %s: %w", tag, err)
		}
	}

	return &prometheusClient{
		httpHandler: promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}),
		metrics:     metrics,
	}, nil
}

var _ MonitorClient = (*prometheusClient)(nil)
