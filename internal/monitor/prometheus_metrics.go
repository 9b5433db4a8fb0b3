package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "verify"

// prometheusMetrics holds the collectors owned by a single prometheusClient, so each client reports into its own
// registry.
type prometheusMetrics struct {
	summaryVecs   map[MetricTag]*prometheus.SummaryVec
	counterVecs   map[MetricTag]*prometheus.CounterVec
	histogramVecs map[MetricTag]*prometheus.HistogramVec
}

func newPrometheusMetrics() *prometheusMetrics {
	return &prometheusMetrics{
		summaryVecs: map[MetricTag]*prometheus.SummaryVec{
			HTTPRequestDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
				Namespace: metricsNamespace, Subsystem: "http", Name: string(HTTPRequestDurationTag),
				Help: "HTTP requests durations, sliding window = 10m",
			},
				[]string{"status", "route", "method"},
			),
		},
		counterVecs: map[MetricTag]*prometheus.CounterVec{
			FailedRequestsCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Name: string(FailedRequestsCounterTag),
				Help: "A counter of the requests refused by the verification provider",
			},
				FailedRequestLabelNames,
			),
			VerificationSucceededCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Name: string(VerificationSucceededCounterTag),
				Help: "A counter of the verification approvals reported to the verification provider",
			},
				VerificationSucceededLabelNames,
			),
		},
		histogramVecs: map[MetricTag]*prometheus.HistogramVec{
			APIRequestDurationTag: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Name: string(APIRequestDurationTag),
				Help: "A histogram of the verification provider API request durations",
			},
				APIRequestLabelNames,
			),
		},
	}
}

func (p *prometheusMetrics) collector(tag MetricTag) (prometheus.Collector, bool) {
	if summaryVec, ok := p.summaryVecs[tag]; ok {
		return summaryVec, true
	}
	if counterVec, ok := p.counterVecs[tag]; ok {
		return counterVec, true
	}
	if histogramVec, ok := p.histogramVecs[tag]; ok {
		return histogramVec, true
	}
	return nil, false
}
