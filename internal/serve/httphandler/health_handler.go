package httphandler

import (
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// HealthResponse follows the draft IETF "Health Check Response Format for HTTP APIs".
//
// https://datatracker.ietf.org/doc/html/draft-inadarei-api-health-check-06#name-api-health-response
type HealthResponse struct {
	Status    Status            `json:"status"`
	Version   string            `json:"version,omitempty"`
	ServiceID string            `json:"service_id,omitempty"`
	ReleaseID string            `json:"release_id,omitempty"`
	Services  map[string]Status `json:"services,omitempty"`
}

type HealthHandler struct {
	Version        string
	ServiceID      string
	ReleaseID      string
	MonitorService monitor.MonitorServiceInterface
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    StatusPass,
		Version:   h.Version,
		ServiceID: h.ServiceID,
		ReleaseID: h.ReleaseID,
	}

	if h.MonitorService != nil {
		metricsStatus := StatusPass
		if _, err := h.MonitorService.GetMetricType(); err != nil {
			metricsStatus = StatusFail
			response.Status = StatusFail
		}
		response.Services = map[string]Status{"metrics": metricsStatus}
	}

	if response.Status == StatusFail {
		httpjson.RenderStatus(w, http.StatusServiceUnavailable, response, httpjson.JSON)
		return
	}

	httpjson.RenderStatus(w, http.StatusOK, response, httpjson.JSON)
}
