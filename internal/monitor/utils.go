package monitor

import (
	"net/http"
	"strconv"
)

const (
	noHTTPStatus  = "0"
	successStatus = "success"
	failureStatus = "failure"
	errorStatus   = "error"
)

// ParseHTTPResponseStatus turns the outcome of an outbound request into the status labels of APIRequestLabels.
// "error" means no response was received, "failure" means the provider answered with anything but a 2xx.
func ParseHTTPResponseStatus(resp *http.Response, reqErr error) (status, statusCode string) {
	if reqErr != nil || resp == nil {
		return errorStatus, noHTTPStatus
	}

	statusCode = strconv.Itoa(resp.StatusCode)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return failureStatus, statusCode
	}
	return successStatus, statusCode
}
