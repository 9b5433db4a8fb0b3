package verify

import (
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/verify/v2"
)

type ResultKind string

const (
	ResultKindSuccess        ResultKind = "SUCCESS"
	ResultKindFailure        ResultKind = "FAILURE"
	ResultKindTransportError ResultKind = "TRANSPORT_ERROR"
)

// VerificationResult is the outcome of a send. Success is set for ResultKindSuccess, Failure for ResultKindFailure
// and Err for ResultKindTransportError.
type VerificationResult struct {
	Kind    ResultKind
	Success *openapi.VerifyV2Verification
	Failure *client.TwilioRestError
	Err     error
}

func successResult(v *openapi.VerifyV2Verification) VerificationResult {
	return VerificationResult{Kind: ResultKindSuccess, Success: v}
}

func failureResult(e *client.TwilioRestError) VerificationResult {
	return VerificationResult{Kind: ResultKindFailure, Failure: e}
}

func transportErrorResult(err error) VerificationResult {
	return VerificationResult{Kind: ResultKindTransportError, Err: err}
}

// VerificationSID returns the provider-assigned verification sid. It is only present for successful sends whose
// response carried a sid.
func (r VerificationResult) VerificationSID() (string, bool) {
	if r.Kind != ResultKindSuccess {
		return "", false
	}
	return VerifyResponse{Success: r.Success}.SID()
}
