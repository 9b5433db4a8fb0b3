package monitor

import (
	"net/http"
	"time"
)

// MonitorClient is implemented by each metrics backend. Recording never fails; backends log what they cannot record.
type MonitorClient interface {
	GetMetricHTTPHandler() http.Handler
	GetMetricType() MetricType
	MonitorHTTPRequestDuration(duration time.Duration, labels HTTPRequestLabels)
	MonitorCounters(tag MetricTag, labels map[string]string)
	MonitorHistogram(value float64, tag MetricTag, labels map[string]string)
}
