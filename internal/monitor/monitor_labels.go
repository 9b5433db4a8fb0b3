package monitor

type HTTPRequestLabels struct {
	Status string
	Route  string
	Method string
}

// FailedRequestLabels are attached to FailedRequestsCounterTag.
type FailedRequestLabels struct {
	Service    string
	StatusCode string
	ErrorCode  string
}

func (f FailedRequestLabels) ToMap() map[string]string {
	return map[string]string{
		"service":     f.Service,
		"status_code": f.StatusCode,
		"error_code":  f.ErrorCode,
	}
}

var FailedRequestLabelNames = []string{"service", "status_code", "error_code"}

// VerificationSucceededLabels are attached to VerificationSucceededCounterTag. ErrorCode and StatusCode are only
// filled in when the provider refused the approval.
type VerificationSucceededLabels struct {
	Context    string
	Platform   string
	ErrorCode  string
	StatusCode string
}

func (v VerificationSucceededLabels) ToMap() map[string]string {
	return map[string]string{
		"context":     v.Context,
		"platform":    v.Platform,
		"error_code":  v.ErrorCode,
		"status_code": v.StatusCode,
	}
}

var VerificationSucceededLabelNames = []string{"context", "platform", "error_code", "status_code"}

type APIRequestLabels struct {
	Method     string
	Endpoint   string
	Status     string
	StatusCode string
}

func (a APIRequestLabels) ToMap() map[string]string {
	return map[string]string{
		"method":      a.Method,
		"endpoint":    a.Endpoint,
		"status":      a.Status,
		"status_code": a.StatusCode,
	}
}

var APIRequestLabelNames = []string{"method", "endpoint", "status", "status_code"}
