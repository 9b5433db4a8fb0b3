package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httpclient"
	"github.com/stellar/stellar-verify-sender/internal/serve/httpclient/mocks"
)

const (
	testAccountSID   = "AC123"
	testAuthToken    = "auth-token"
	testServiceSID   = "VA123"
	testFriendlyName = "Stellar"
	testAppHash      = "app-hash"
	testPhoneNumber  = "+14155551234"
)

type capturedRequest struct {
	path        string
	form        url.Values
	username    string
	password    string
	contentType string
}

// newProviderServer replies with status and body to every request and hands over what it received.
func newProviderServer(t *testing.T, status int, contentType, body string) (*httptest.Server, chan capturedRequest) {
	t.Helper()

	received := make(chan capturedRequest, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		username, password, _ := r.BasicAuth()
		received <- capturedRequest{
			path:        r.URL.Path,
			form:        r.PostForm,
			username:    username,
			password:    password,
			contentType: r.Header.Get("Content-Type"),
		}

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, err := w.Write([]byte(body))
		assert.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	return server, received
}

func newTestVerifySender(t *testing.T, baseURL string, httpClient httpclient.HTTPClientInterface, monitorService monitor.MonitorServiceInterface) *VerifySender {
	t.Helper()

	sender, err := NewVerifySender(VerifySenderOptions{
		BaseURL:             baseURL,
		AccountSID:          testAccountSID,
		AuthToken:           testAuthToken,
		ServiceSID:          testServiceSID,
		ServiceFriendlyName: testFriendlyName,
		AndroidAppHash:      testAppHash,
		HTTPClient:          httpClient,
		MonitorService:      monitorService,
	})
	require.NoError(t, err)

	return sender
}

func expectAPIRequestDuration(mMonitorService *monitor.MockMonitorService, endpoint, status, statusCode string) {
	mMonitorService.
		On("MonitorHistogram", mock.AnythingOfType("float64"), monitor.APIRequestDurationTag, monitor.APIRequestLabels{
			Method:     http.MethodPost,
			Endpoint:   endpoint,
			Status:     status,
			StatusCode: statusCode,
		}.ToMap()).
		Return(nil).
		Once()
}

func Test_NewVerifySender(t *testing.T) {
	validOpts := func() VerifySenderOptions {
		return VerifySenderOptions{
			AccountSID:          testAccountSID,
			AuthToken:           testAuthToken,
			ServiceSID:          testServiceSID,
			ServiceFriendlyName: testFriendlyName,
			MonitorService:      &monitor.MockMonitorService{},
		}
	}

	testCases := []struct {
		name      string
		modify    func(o *VerifySenderOptions)
		wantError string
	}{
		{
			name:      "blank account sid",
			modify:    func(o *VerifySenderOptions) { o.AccountSID = "  " },
			wantError: "validating verify sender options: account sid cannot be empty",
		},
		{
			name:      "empty auth token",
			modify:    func(o *VerifySenderOptions) { o.AuthToken = "" },
			wantError: "validating verify sender options: auth token cannot be empty",
		},
		{
			name:      "empty service sid",
			modify:    func(o *VerifySenderOptions) { o.ServiceSID = "" },
			wantError: "validating verify sender options: verify service sid cannot be empty",
		},
		{
			name:      "empty friendly name",
			modify:    func(o *VerifySenderOptions) { o.ServiceFriendlyName = "" },
			wantError: "validating verify sender options: verify service friendly name cannot be empty",
		},
		{
			name:      "nil monitor service",
			modify:    func(o *VerifySenderOptions) { o.MonitorService = nil },
			wantError: "validating verify sender options: monitor service cannot be nil",
		},
		{
			name:      "invalid base url",
			modify:    func(o *VerifySenderOptions) { o.BaseURL = "verify.twilio.com" },
			wantError: `validating verify sender options: invalid base url "verify.twilio.com": parse "verify.twilio.com": invalid URI for request`,
		},
		{
			name:   "defaults",
			modify: func(o *VerifySenderOptions) {},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := validOpts()
			tc.modify(&opts)

			sender, err := NewVerifySender(opts)
			if tc.wantError != "" {
				assert.EqualError(t, err, tc.wantError)
				assert.Nil(t, sender)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "https://verify.twilio.com/v2/Services/VA123/Verifications", sender.verificationsURL)
			assert.IsType(t, &httpclient.FaultTolerantClient{}, sender.httpClient)
		})
	}
}

func Test_VerifySender_SendSMSVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("android client with a supported locale", func(t *testing.T) {
		server, received := newProviderServer(t, http.StatusCreated, "application/json", `{"sid": "VE123", "status": "pending"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "success", "201")
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		result := sender.SendSMSVerification(ctx, testPhoneNumber, "android-2021-03", "123456", ParseLanguageRanges("fr-CA, en;q=0.5"))

		assert.Equal(t, ResultKindSuccess, result.Kind)
		sid, ok := result.VerificationSID()
		assert.True(t, ok)
		assert.Equal(t, "VE123", sid)

		req := <-received
		assert.Equal(t, "/v2/Services/VA123/Verifications", req.path)
		assert.Equal(t, testAccountSID, req.username)
		assert.Equal(t, testAuthToken, req.password)
		assert.Equal(t, "application/x-www-form-urlencoded", req.contentType)
		assert.Equal(t, url.Values{
			"To":                 {testPhoneNumber},
			"CustomCode":         {"123456"},
			"Channel":            {"sms"},
			"CustomFriendlyName": {testFriendlyName},
			"Locale":             {"fr"},
			"AppHash":            {testAppHash},
		}, req.form)

		mMonitorService.AssertExpectations(t)
	})

	t.Run("non-android client without a supported locale", func(t *testing.T) {
		server, received := newProviderServer(t, http.StatusCreated, "application/json", `{"sid": "VE456", "status": "pending"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "success", "201")
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		result := sender.SendSMSVerification(ctx, testPhoneNumber, "ios", "123456", ParseLanguageRanges("tlh, sw"))

		sid, ok := result.VerificationSID()
		assert.True(t, ok)
		assert.Equal(t, "VE456", sid)

		req := <-received
		assert.NotContains(t, req.form, "AppHash")
		assert.NotContains(t, req.form, "Locale")
		assert.Equal(t, "sms", req.form.Get("Channel"))

		mMonitorService.AssertExpectations(t)
	})

	t.Run("provider failure is recorded", func(t *testing.T) {
		server, _ := newProviderServer(t, http.StatusNotFound, "application/json", `{"status": 404, "code": 60200, "message": "Invalid parameter"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "failure", "404")
		mMonitorService.
			On("MonitorCounters", monitor.FailedRequestsCounterTag, map[string]string{
				"service":     "verify",
				"status_code": "404",
				"error_code":  "60200",
			}).
			Return(nil).
			Once()
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		getEntries := log.DefaultLogger.StartTest(log.InfoLevel)
		result := sender.SendSMSVerification(ctx, testPhoneNumber, "", "123456", nil)

		assert.Equal(t, ResultKindFailure, result.Kind)
		require.NotNil(t, result.Failure)
		assert.Equal(t, "Invalid parameter", result.Failure.Message)
		_, ok := result.VerificationSID()
		assert.False(t, ok)

		entries := getEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Failed with code=60200, country=1", entries[0].Message)

		mMonitorService.AssertExpectations(t)
	})

	t.Run("non JSON failure falls back to the HTTP status", func(t *testing.T) {
		server, _ := newProviderServer(t, http.StatusBadGateway, "text/html", "<html>bad gateway</html>")
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "failure", "502")
		mMonitorService.
			On("MonitorCounters", monitor.FailedRequestsCounterTag, map[string]string{
				"service":     "verify",
				"status_code": "502",
				"error_code":  "0",
			}).
			Return(nil).
			Once()
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		result := sender.SendSMSVerification(ctx, testPhoneNumber, "", "123456", nil)

		assert.Equal(t, ResultKindFailure, result.Kind)
		mMonitorService.AssertExpectations(t)
	})

	t.Run("transport error yields an empty result", func(t *testing.T) {
		mHTTPClient := &mocks.HTTPClientMock{}
		mHTTPClient.On("Do", mock.AnythingOfType("*http.Request")).Return(nil, errors.New("connection refused")).Once()
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "error", "0")
		sender := newTestVerifySender(t, "https://verify.example.com", mHTTPClient, mMonitorService)

		getEntries := log.DefaultLogger.StartTest(log.WarnLevel)
		result := sender.SendSMSVerification(ctx, testPhoneNumber, "android", "123456", nil)

		assert.Equal(t, ResultKindTransportError, result.Kind)
		assert.EqualError(t, result.Err, "connection refused")
		_, ok := result.VerificationSID()
		assert.False(t, ok)

		entries := getEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Failed to send verification request: connection refused", entries[0].Message)

		mHTTPClient.AssertExpectations(t)
		mMonitorService.AssertExpectations(t)
	})

	t.Run("success without a JSON body has no sid", func(t *testing.T) {
		server, _ := newProviderServer(t, http.StatusOK, "text/plain", "ok")
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, sendEndpoint, "success", "200")
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		result := sender.SendSMSVerification(ctx, testPhoneNumber, "", "123456", nil)

		assert.Equal(t, ResultKindSuccess, result.Kind)
		_, ok := result.VerificationSID()
		assert.False(t, ok)
		mMonitorService.AssertExpectations(t)
	})
}

func Test_VerifySender_SendVoiceVerification(t *testing.T) {
	server, received := newProviderServer(t, http.StatusCreated, "application/json", `{"sid": "VE789", "status": "pending"}`)
	mMonitorService := monitor.NewMockMonitorService(t)
	expectAPIRequestDuration(mMonitorService, sendEndpoint, "success", "201")
	sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

	ranges := []LanguageRange{{Range: "pt-br", Weight: 1}}
	result := sender.SendVoiceVerification(context.Background(), testPhoneNumber, "987654", ranges)

	sid, ok := result.VerificationSID()
	assert.True(t, ok)
	assert.Equal(t, "VE789", sid)

	req := <-received
	assert.Equal(t, "call", req.form.Get("Channel"))
	assert.Equal(t, "pt-BR", req.form.Get("Locale"))
	assert.NotContains(t, req.form, "AppHash")

	mMonitorService.AssertExpectations(t)
}

func Test_VerifySender_ReportVerificationSucceeded(t *testing.T) {
	ctx := context.Background()
	const androidUserAgent = "Signal-Android/6.2.0 Android/30"

	t.Run("approved", func(t *testing.T) {
		server, received := newProviderServer(t, http.StatusOK, "application/json", `{"sid": "VE123", "status": "approved"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, approveEndpoint, "success", "200")
		mMonitorService.
			On("MonitorCounters", monitor.VerificationSucceededCounterTag, map[string]string{
				"context":     "registration",
				"platform":    "android",
				"error_code":  "",
				"status_code": "",
			}).
			Return(nil).
			Once()
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		assert.True(t, sender.ReportVerificationSucceeded(ctx, "VE123", androidUserAgent, "registration"))

		req := <-received
		assert.Equal(t, "/v2/Services/VA123/Verifications/VE123", req.path)
		assert.Equal(t, url.Values{"Status": {"approved"}}, req.form)
		assert.Equal(t, testAccountSID, req.username)
		assert.Equal(t, testAuthToken, req.password)
		assert.Equal(t, "application/x-www-form-urlencoded", req.contentType)

		mMonitorService.AssertExpectations(t)
	})

	t.Run("success with another status is not an approval", func(t *testing.T) {
		server, _ := newProviderServer(t, http.StatusOK, "application/json", `{"sid": "VE123", "status": "pending"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, approveEndpoint, "success", "200")
		mMonitorService.
			On("MonitorCounters", monitor.VerificationSucceededCounterTag, map[string]string{
				"context":     "registration",
				"platform":    "ios",
				"error_code":  "0",
				"status_code": "200",
			}).
			Return(nil).
			Once()
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		assert.False(t, sender.ReportVerificationSucceeded(ctx, "VE123", "Signal-iOS/5.0 iOS/14.2", "registration"))
		mMonitorService.AssertExpectations(t)
	})

	t.Run("provider failure", func(t *testing.T) {
		server, _ := newProviderServer(t, http.StatusNotFound, "application/json", `{"status": 404, "code": 20404, "message": "not found"}`)
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, approveEndpoint, "failure", "404")
		mMonitorService.
			On("MonitorCounters", monitor.VerificationSucceededCounterTag, map[string]string{
				"context":     "change_number",
				"platform":    "unrecognized",
				"error_code":  "20404",
				"status_code": "404",
			}).
			Return(nil).
			Once()
		sender := newTestVerifySender(t, server.URL, nil, mMonitorService)

		assert.False(t, sender.ReportVerificationSucceeded(ctx, "VE123", "", "change_number"))
		mMonitorService.AssertExpectations(t)
	})

	t.Run("transport error", func(t *testing.T) {
		mHTTPClient := &mocks.HTTPClientMock{}
		mHTTPClient.On("Do", mock.AnythingOfType("*http.Request")).Return(nil, errors.New("i/o timeout")).Once()
		mMonitorService := monitor.NewMockMonitorService(t)
		expectAPIRequestDuration(mMonitorService, approveEndpoint, "error", "0")
		sender := newTestVerifySender(t, "https://verify.example.com", mHTTPClient, mMonitorService)

		getEntries := log.DefaultLogger.StartTest(log.WarnLevel)
		assert.False(t, sender.ReportVerificationSucceeded(ctx, "VE123", androidUserAgent, "registration"))

		entries := getEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Failed to send verification succeeded: i/o timeout", entries[0].Message)

		mMonitorService.AssertNotCalled(t, "MonitorCounters", mock.Anything, mock.Anything)
		mHTTPClient.AssertExpectations(t)
	})

	t.Run("blank verification sid", func(t *testing.T) {
		mHTTPClient := &mocks.HTTPClientMock{}
		sender := newTestVerifySender(t, "https://verify.example.com", mHTTPClient, &monitor.MockMonitorService{})

		assert.False(t, sender.ReportVerificationSucceeded(ctx, " ", androidUserAgent, "registration"))
		mHTTPClient.AssertNotCalled(t, "Do", mock.Anything)
	})
}

func Test_ParseChannel(t *testing.T) {
	channel, err := ParseChannel(" SMS ")
	require.NoError(t, err)
	assert.Equal(t, ChannelSMS, channel)

	channel, err = ParseChannel("call")
	require.NoError(t, err)
	assert.Equal(t, ChannelVoice, channel)

	_, err = ParseChannel("voice")
	assert.EqualError(t, err, `invalid verification channel "voice"`)
}
