package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/stellar/stellar-verify-sender/internal/utils"
)

// maxResponseBodySize caps how much of a provider response is read.
const maxResponseBodySize = 1 << 20

// VerifyResponse is a provider response classified by its status code. Exactly one of Success and Failure is set.
type VerifyResponse struct {
	StatusCode int
	Success    *openapi.VerifyV2Verification
	Failure    *client.TwilioRestError
}

func (r VerifyResponse) IsSuccess() bool {
	return r.Success != nil
}

func (r VerifyResponse) IsFailure() bool {
	return r.Failure != nil
}

// SID returns the verification sid of a successful response, if the provider sent one.
func (r VerifyResponse) SID() (string, bool) {
	if r.Success == nil || r.Success.Sid == nil || *r.Success.Sid == "" {
		return "", false
	}
	return *r.Success.Sid, true
}

// Status returns the verification status of a successful response, or "" when there is none.
func (r VerifyResponse) Status() string {
	if r.Success == nil || r.Success.Status == nil {
		return ""
	}
	return *r.Success.Status
}

// FailureStatusCode is the status code reported in the failure body, falling back to the HTTP status code when the
// body did not carry one.
func (r VerifyResponse) FailureStatusCode() int {
	if r.Failure != nil && r.Failure.Status != 0 {
		return r.Failure.Status
	}
	return r.StatusCode
}

// FailureErrorCode is the provider error code of a failed response, 0 when unknown.
func (r VerifyResponse) FailureErrorCode() int {
	if r.Failure == nil {
		return 0
	}
	return r.Failure.Code
}

// ParseVerifyResponse classifies resp as a success (2xx) or a failure and decodes the body into the matching shape.
// The body is only decoded when it is declared as JSON. A body that can't be decoded leaves the shape empty. The
// response body is consumed and closed.
func ParseVerifyResponse(resp *http.Response) VerifyResponse {
	defer resp.Body.Close()

	parsed := VerifyResponse{StatusCode: resp.StatusCode}
	var target any
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		parsed.Success = &openapi.VerifyV2Verification{}
		target = parsed.Success
	} else {
		parsed.Failure = &client.TwilioRestError{}
		target = parsed.Failure
	}

	if !utils.IsJSON(resp.Header) {
		return parsed
	}

	if err := decodeBody(resp.Body, target); err != nil {
		log.Warnf("Error parsing verify response with status %d: %v", resp.StatusCode, err)
		if parsed.IsSuccess() {
			parsed.Success = &openapi.VerifyV2Verification{}
		} else {
			parsed.Failure = &client.TwilioRestError{}
		}
	}

	return parsed
}

func decodeBody(body io.Reader, target any) error {
	b, err := io.ReadAll(io.LimitReader(body, maxResponseBodySize))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	if err = json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("unmarshalling body: %w", err)
	}

	return nil
}
