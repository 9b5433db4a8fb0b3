package verify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stellar/go-stellar-sdk/support/log"
	openapi "github.com/twilio/twilio-go/rest/verify/v2"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httpclient"
	"github.com/stellar/stellar-verify-sender/internal/utils"
)

const (
	DefaultBaseURL = "https://verify.twilio.com"

	failedRequestServiceName = "verify"
	statusApproved           = "approved"
	androidClientPrefix      = "android"

	sendEndpoint    = "verifications"
	approveEndpoint = "verification_approval"
)

type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelVoice Channel = "call"
)

func ParseChannel(channel string) (Channel, error) {
	switch c := Channel(utils.TrimAndLower(channel)); c {
	case ChannelSMS, ChannelVoice:
		return c, nil
	default:
		return "", fmt.Errorf("invalid verification channel %q", channel)
	}
}

// VerificationRequest describes a verification code to deliver.
type VerificationRequest struct {
	Destination string
	Code        string
	Channel     Channel
	// ClientType is a hint of the requesting client, such as "android-2021-03".
	ClientType     string
	LanguageRanges []LanguageRange
}

type VerifySenderOptions struct {
	BaseURL             string
	AccountSID          string
	AuthToken           string
	ServiceSID          string
	ServiceFriendlyName string
	AndroidAppHash      string
	HTTPClient          httpclient.HTTPClientInterface
	MonitorService      monitor.MonitorServiceInterface
}

func (o VerifySenderOptions) Validate() error {
	if utils.IsBlank(o.AccountSID) {
		return fmt.Errorf("account sid cannot be empty")
	}
	if utils.IsBlank(o.AuthToken) {
		return fmt.Errorf("auth token cannot be empty")
	}
	if utils.IsBlank(o.ServiceSID) {
		return fmt.Errorf("verify service sid cannot be empty")
	}
	if utils.IsBlank(o.ServiceFriendlyName) {
		return fmt.Errorf("verify service friendly name cannot be empty")
	}
	if o.MonitorService == nil {
		return fmt.Errorf("monitor service cannot be nil")
	}
	if o.BaseURL != "" {
		if _, err := url.ParseRequestURI(o.BaseURL); err != nil {
			return fmt.Errorf("invalid base url %q: %w", o.BaseURL, err)
		}
	}

	return nil
}

type VerifySenderInterface interface {
	SendCode(ctx context.Context, vr VerificationRequest) VerificationResult
	SendSMSVerification(ctx context.Context, destination, clientType, code string, ranges []LanguageRange) VerificationResult
	SendVoiceVerification(ctx context.Context, destination, code string, ranges []LanguageRange) VerificationResult
	ReportVerificationSucceeded(ctx context.Context, verificationSID, userAgent, verificationContext string) bool
}

var _ VerifySenderInterface = (*VerifySender)(nil)

// VerifySender delivers verification codes through the Twilio Verify v2 API and reports approved verifications back
// to it. It holds no mutable state and is safe for concurrent use.
type VerifySender struct {
	accountSID          string
	authToken           string
	verificationsURL    string
	serviceFriendlyName string
	androidAppHash      string
	httpClient          httpclient.HTTPClientInterface
	monitorService      monitor.MonitorServiceInterface
}

func NewVerifySender(opts VerifySenderOptions) (*VerifySender, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validating verify sender options: %w", err)
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.NewFaultTolerantClient(httpclient.FaultTolerantClientOptions{})
	}

	return &VerifySender{
		accountSID:          strings.TrimSpace(opts.AccountSID),
		authToken:           strings.TrimSpace(opts.AuthToken),
		verificationsURL:    fmt.Sprintf("%s/v2/Services/%s/Verifications", strings.TrimRight(baseURL, "/"), url.PathEscape(strings.TrimSpace(opts.ServiceSID))),
		serviceFriendlyName: opts.ServiceFriendlyName,
		androidAppHash:      opts.AndroidAppHash,
		httpClient:          httpClient,
		monitorService:      opts.MonitorService,
	}, nil
}

func (s *VerifySender) SendSMSVerification(ctx context.Context, destination, clientType, code string, ranges []LanguageRange) VerificationResult {
	return s.SendCode(ctx, VerificationRequest{
		Destination:    destination,
		Code:           code,
		Channel:        ChannelSMS,
		ClientType:     clientType,
		LanguageRanges: ranges,
	})
}

func (s *VerifySender) SendVoiceVerification(ctx context.Context, destination, code string, ranges []LanguageRange) VerificationResult {
	return s.SendCode(ctx, VerificationRequest{
		Destination:    destination,
		Code:           code,
		Channel:        ChannelVoice,
		LanguageRanges: ranges,
	})
}

// SendCode asks the provider to deliver the code to the destination. Failures are logged and recorded in the
// failed requests metric, and are only reported through the result kind.
func (s *VerifySender) SendCode(ctx context.Context, vr VerificationRequest) VerificationResult {
	logger := log.Ctx(ctx).WithFields(log.F{
		"verify_request_id": uuid.NewString(),
		"channel":           vr.Channel,
		"phone_number":      utils.TruncateString(vr.Destination, 3),
	})

	params := s.createVerificationParams(vr)
	resp, err := s.post(ctx, s.verificationsURL, createVerificationForm(params), sendEndpoint)
	if err != nil {
		logger.Warnf("Failed to send verification request: %v", err)
		return transportErrorResult(err)
	}

	parsed := ParseVerifyResponse(resp)
	if parsed.IsFailure() {
		s.monitorCounters(ctx, monitor.FailedRequestsCounterTag, monitor.FailedRequestLabels{
			Service:    failedRequestServiceName,
			StatusCode: strconv.Itoa(parsed.FailureStatusCode()),
			ErrorCode:  strconv.Itoa(parsed.FailureErrorCode()),
		}.ToMap())
		logger.Infof("Failed with code=%d, country=%s", parsed.FailureErrorCode(), utils.GetCountryCode(vr.Destination))
		return failureResult(parsed.Failure)
	}

	logger.Debugf("Verification created with status %q", parsed.Status())
	return successResult(parsed.Success)
}

func (s *VerifySender) createVerificationParams(vr VerificationRequest) *openapi.CreateVerificationParams {
	params := (&openapi.CreateVerificationParams{}).
		SetTo(vr.Destination).
		SetCustomCode(vr.Code).
		SetChannel(string(vr.Channel)).
		SetCustomFriendlyName(s.serviceFriendlyName)

	if locale, ok := FindBestLocale(vr.LanguageRanges, supportedLocales); ok {
		params.SetLocale(locale)
	}
	if strings.HasPrefix(vr.ClientType, androidClientPrefix) {
		params.SetAppHash(s.androidAppHash)
	}

	return params
}

func createVerificationForm(params *openapi.CreateVerificationParams) url.Values {
	form := url.Values{}
	setFormValue(form, "To", params.To)
	setFormValue(form, "CustomCode", params.CustomCode)
	setFormValue(form, "Channel", params.Channel)
	setFormValue(form, "CustomFriendlyName", params.CustomFriendlyName)
	setFormValue(form, "Locale", params.Locale)
	setFormValue(form, "AppHash", params.AppHash)
	return form
}

func updateVerificationForm(params *openapi.UpdateVerificationParams) url.Values {
	form := url.Values{}
	setFormValue(form, "Status", params.Status)
	return form
}

func setFormValue(form url.Values, key string, value *string) {
	if value != nil {
		form.Set(key, *value)
	}
}

// ReportVerificationSucceeded marks the verification as approved with the provider. It returns true only when the
// provider confirmed the approval. The outcome is recorded with the caller context and the platform found in the
// user agent.
func (s *VerifySender) ReportVerificationSucceeded(ctx context.Context, verificationSID, userAgent, verificationContext string) bool {
	logger := log.Ctx(ctx).WithFields(log.F{
		"verify_request_id": uuid.NewString(),
		"verification_sid":  verificationSID,
	})

	if utils.IsBlank(verificationSID) {
		logger.Warn("Cannot report a verification as succeeded without its sid")
		return false
	}

	params := (&openapi.UpdateVerificationParams{}).SetStatus(statusApproved)
	approvalURL := s.verificationsURL + "/" + url.PathEscape(strings.TrimSpace(verificationSID))
	resp, err := s.post(ctx, approvalURL, updateVerificationForm(params), approveEndpoint)
	if err != nil {
		logger.Warnf("Failed to send verification succeeded: %v", err)
		return false
	}

	parsed := ParseVerifyResponse(resp)
	labels := monitor.VerificationSucceededLabels{
		Context:  verificationContext,
		Platform: string(ParseClientPlatform(userAgent)),
	}

	approved := parsed.IsSuccess() && parsed.Status() == statusApproved
	if !approved {
		labels.ErrorCode = strconv.Itoa(parsed.FailureErrorCode())
		labels.StatusCode = strconv.Itoa(parsed.FailureStatusCode())
		logger.Infof("Verification approval refused with code=%s, status=%s", labels.ErrorCode, labels.StatusCode)
	}
	s.monitorCounters(ctx, monitor.VerificationSucceededCounterTag, labels.ToMap())

	return approved
}

func (s *VerifySender) post(ctx context.Context, endpointURL string, form url.Values, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	status, statusCode := monitor.ParseHTTPResponseStatus(resp, err)
	s.monitorHistogram(ctx, time.Since(startTime).Seconds(), monitor.APIRequestDurationTag, monitor.APIRequestLabels{
		Method:     http.MethodPost,
		Endpoint:   endpoint,
		Status:     status,
		StatusCode: statusCode,
	}.ToMap())
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *VerifySender) monitorCounters(ctx context.Context, tag monitor.MetricTag, labels map[string]string) {
	if err := s.monitorService.MonitorCounters(tag, labels); err != nil {
		log.Ctx(ctx).Errorf("monitoring counter %s: %v", tag, err)
	}
}

func (s *VerifySender) monitorHistogram(ctx context.Context, value float64, tag monitor.MetricTag, labels map[string]string) {
	if err := s.monitorService.MonitorHistogram(value, tag, labels); err != nil {
		log.Ctx(ctx).Errorf("monitoring histogram %s: %v", tag, err)
	}
}
