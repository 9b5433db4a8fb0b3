package monitor

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var (
	ErrClientNotInitialized = errors.New("client was not initialized")
	ErrAlreadyStarted       = errors.New("service already initialized")
)

type MonitorServiceInterface interface {
	Start(opts MetricOptions) error
	GetMetricType() (MetricType, error)
	GetMetricHTTPHandler() (http.Handler, error)
	MonitorHTTPRequestDuration(duration time.Duration, labels HTTPRequestLabels) error
	MonitorCounters(tag MetricTag, labels map[string]string) error
	MonitorHistogram(value float64, tag MetricTag, labels map[string]string) error
}

var _ MonitorServiceInterface = (*MonitorService)(nil)

// MonitorService is started once by the command wiring and then shared by the HTTP middleware and the verify sender,
// which record from concurrent requests.
type MonitorService struct {
	mu            sync.RWMutex
	monitorClient MonitorClient
}

func (m *MonitorService) Start(opts MetricOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.monitorClient != nil {
		return ErrAlreadyStarted
	}

	monitorClient, err := GetClient(opts)
	if err != nil {
		return fmt.Errorf("error creating monitor client: %w", err)
	}
	m.monitorClient = monitorClient

	return nil
}

func (m *MonitorService) client() (MonitorClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.monitorClient == nil {
		return nil, ErrClientNotInitialized
	}
	return m.monitorClient, nil
}

func (m *MonitorService) GetMetricType() (MetricType, error) {
	c, err := m.client()
	if err != nil {
		return "", err
	}
	return c.GetMetricType(), nil
}

func (m *MonitorService) GetMetricHTTPHandler() (http.Handler, error) {
	c, err := m.client()
	if err != nil {
		return nil, err
	}
	return c.GetMetricHTTPHandler(), nil
}

func (m *MonitorService) MonitorHTTPRequestDuration(duration time.Duration, labels HTTPRequestLabels) error {
	c, err := m.client()
	if err != nil {
		return err
	}
	c.MonitorHTTPRequestDuration(duration, labels)
	return nil
}

func (m *MonitorService) MonitorHistogram(value float64, tag MetricTag, labels map[string]string) error {
	c, err := m.client()
	if err != nil {
		return err
	}
	c.MonitorHistogram(value, tag, labels)
	return nil
}

func (m *MonitorService) MonitorCounters(tag MetricTag, labels map[string]string) error {
	c, err := m.client()
	if err != nil {
		return err
	}
	c.MonitorCounters(tag, labels)
	return nil
}
