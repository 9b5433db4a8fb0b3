package monitor

type MetricTag string

const (
	HTTPRequestDurationTag MetricTag = "requests_duration_seconds"
	// Verify API
	FailedRequestsCounterTag        MetricTag = "failed_requests_total"
	VerificationSucceededCounterTag MetricTag = "verification_succeeded_total"
	APIRequestDurationTag           MetricTag = "api_request_duration_seconds"
)

func (m MetricTag) ListAll() []MetricTag {
	return []MetricTag{
		HTTPRequestDurationTag,
		FailedRequestsCounterTag,
		VerificationSucceededCounterTag,
		APIRequestDurationTag,
	}
}
