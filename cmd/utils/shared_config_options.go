package utils

import (
	"fmt"
	"go/types"

	"github.com/stellar/go-stellar-sdk/support/config"

	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/serve/httpclient"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

// TwilioVerifyOptions holds the credentials and tunables of the Twilio Verify v2 service used to deliver codes.
type TwilioVerifyOptions struct {
	AccountSID          string
	AuthToken           string
	ServiceSID          string
	ServiceFriendlyName string
	BaseURL             string
	AndroidAppHash      string
	HTTPRetryAttempts   int
}

func (o TwilioVerifyOptions) ValidateFlags() error {
	if o.HTTPRetryAttempts < 1 {
		return fmt.Errorf("http retry attempts must be greater than zero, got %d", o.HTTPRetryAttempts)
	}
	return nil
}

// VerifySenderOptions builds the options of a verify.VerifySender that sends requests through a fault-tolerant
// client configured with the retry attempts of these options.
func (o TwilioVerifyOptions) VerifySenderOptions(monitorService monitor.MonitorServiceInterface) verify.VerifySenderOptions {
	return verify.VerifySenderOptions{
		BaseURL:             o.BaseURL,
		AccountSID:          o.AccountSID,
		AuthToken:           o.AuthToken,
		ServiceSID:          o.ServiceSID,
		ServiceFriendlyName: o.ServiceFriendlyName,
		AndroidAppHash:      o.AndroidAppHash,
		HTTPClient: httpclient.NewFaultTolerantClient(httpclient.FaultTolerantClientOptions{
			Attempts: uint(max(o.HTTPRetryAttempts, 1)),
		}),
		MonitorService: monitorService,
	}
}

// TwilioVerifyConfigOptions returns the config options for the Twilio Verify service: `TWILIO_*`.
func TwilioVerifyConfigOptions(opts *TwilioVerifyOptions) []*config.ConfigOption {
	return []*config.ConfigOption{
		{
			Name:      "twilio-account-sid",
			Usage:     "The SID of the Twilio account",
			OptType:   types.String,
			ConfigKey: &opts.AccountSID,
			Required:  true,
		},
		{
			Name:      "twilio-auth-token",
			Usage:     "The Auth Token of the Twilio account",
			OptType:   types.String,
			ConfigKey: &opts.AuthToken,
			Required:  true,
		},
		{
			Name:      "twilio-verify-service-sid",
			Usage:     "The SID of the Twilio Verify service used to deliver the verification codes",
			OptType:   types.String,
			ConfigKey: &opts.ServiceSID,
			Required:  true,
		},
		{
			Name:      "twilio-verify-service-friendly-name",
			Usage:     "The name shown to the user in the verification message, e.g. 'Your <name> verification code is ...'",
			OptType:   types.String,
			ConfigKey: &opts.ServiceFriendlyName,
			Required:  true,
		},
		{
			Name:           "twilio-verify-base-url",
			Usage:          "The base URL of the Twilio Verify API. Override it to point to a test double.",
			OptType:        types.String,
			CustomSetValue: SetConfigOptionURLString,
			ConfigKey:      &opts.BaseURL,
			FlagDefault:    verify.DefaultBaseURL,
			Required:       false,
		},
		{
			Name:      "android-app-hash",
			Usage:     "The app hash appended to SMS verifications requested by Android clients, used for SMS auto-retrieval",
			OptType:   types.String,
			ConfigKey: &opts.AndroidAppHash,
			Required:  false,
		},
		{
			Name:        "http-retry-attempts",
			Usage:       "The number of attempts made when a request to Twilio fails at the transport level",
			OptType:     types.Int,
			ConfigKey:   &opts.HTTPRetryAttempts,
			FlagDefault: httpclient.DefaultRetryAttempts,
			Required:    false,
		},
	}
}

func CrashTrackerTypeConfigOption(targetPointer interface{}) *config.ConfigOption {
	return &config.ConfigOption{
		Name:           "crash-tracker-type",
		Usage:          `Crash tracker type. Options: "SENTRY", "DRY_RUN"`,
		OptType:        types.String,
		CustomSetValue: SetConfigOptionCrashTrackerType,
		ConfigKey:      targetPointer,
		FlagDefault:    string(crashtracker.CrashTrackerTypeDryRun),
		Required:       true,
	}
}

func MetricTypeConfigOption(targetPointer interface{}) *config.ConfigOption {
	return &config.ConfigOption{
		Name:           "metrics-type",
		Usage:          `Metric monitor type. Options: "PROMETHEUS"`,
		OptType:        types.String,
		CustomSetValue: SetConfigOptionMetricType,
		ConfigKey:      targetPointer,
		FlagDefault:    string(monitor.MetricTypePrometheus),
		Required:       true,
	}
}
