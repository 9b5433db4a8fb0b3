package monitor

import (
	"fmt"
	"strings"
)

type MetricType string

const (
	MetricTypePrometheus MetricType = "PROMETHEUS"
)

// ParseMetricType accepts the metric type in any case, ignoring surrounding whitespace.
func ParseMetricType(metricTypeStr string) (MetricType, error) {
	mType := MetricType(strings.ToUpper(strings.TrimSpace(metricTypeStr)))
	if mType != MetricTypePrometheus {
		return "", fmt.Errorf("invalid metric type %q", mType)
	}
	return mType, nil
}

// MetricOptions selects the metrics backend. Environment, when set, is attached to every exported metric.
type MetricOptions struct {
	MetricType  MetricType
	Environment string
}

func GetClient(opts MetricOptions) (MonitorClient, error) {
	if opts.MetricType != MetricTypePrometheus {
		return nil, fmt.Errorf("unknown metric type: %q", opts.MetricType)
	}

	client, err := NewPrometheusClient(opts)
	if err != nil {
		return nil, fmt.Errorf("creating prometheus client: %w", err)
	}
	return client, nil
}
