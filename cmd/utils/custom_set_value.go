package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stellar/go-stellar-sdk/support/config"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
	"github.com/stellar/stellar-verify-sender/internal/verify"
)

func SetConfigOptionMetricType(co *config.ConfigOption) error {
	metricType := viper.GetString(co.Name)

	metricTypeParsed, err := monitor.ParseMetricType(metricType)
	if err != nil {
		return fmt.Errorf("couldn't parse metric type: %w", err)
	}

	*(co.ConfigKey.(*monitor.MetricType)) = metricTypeParsed
	return nil
}

func SetConfigOptionCrashTrackerType(co *config.ConfigOption) error {
	ctType := viper.GetString(co.Name)

	ctTypeParsed, err := crashtracker.ParseCrashTrackerType(ctType)
	if err != nil {
		return fmt.Errorf("couldn't parse crash tracker type: %w", err)
	}

	*(co.ConfigKey.(*crashtracker.CrashTrackerType)) = ctTypeParsed
	return nil
}

// SetConfigOptionVerificationChannel parses the delivery channel of a verification code, either "sms" or "call".
func SetConfigOptionVerificationChannel(co *config.ConfigOption) error {
	channel, err := verify.ParseChannel(viper.GetString(co.Name))
	if err != nil {
		return fmt.Errorf("couldn't parse verification channel: %w", err)
	}

	key, ok := co.ConfigKey.(*verify.Channel)
	if !ok {
		return fmt.Errorf("the expected type for this config key is a verify.Channel, but got a %T instead", co.ConfigKey)
	}
	*key = channel

	return nil
}

func SetConfigOptionLogLevel(co *config.ConfigOption) error {
	logLevelStr := viper.GetString(co.Name)
	logLevel, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		return fmt.Errorf("couldn't parse log level: %w", err)
	}

	key, ok := co.ConfigKey.(*logrus.Level)
	if !ok {
		return fmt.Errorf("configKey has an invalid type %T", co.ConfigKey)
	}
	*key = logLevel

	if config.IsExplicitlySet(co) {
		log.Debugf("Setting log level to: %q", logLevel)
		log.DefaultLogger.SetLevel(*key)
	} else {
		log.Debugf("Using default log level: %q", logLevel)
	}
	return nil
}

// SetConfigOptionURLString validates that the option holds an absolute URL, such as the Twilio Verify base URL.
func SetConfigOptionURLString(co *config.ConfigOption) error {
	u := viper.GetString(co.Name)

	if u == "" {
		return fmt.Errorf("%s cannot be empty", co.Name)
	}

	parsed, err := url.ParseRequestURI(u)
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", co.Name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use the http or https scheme, got %q", co.Name, parsed.Scheme)
	}

	key, ok := co.ConfigKey.(*string)
	if !ok {
		return fmt.Errorf("the expected type for this config key is a string, but got a %T instead", co.ConfigKey)
	}
	*key = u

	return nil
}

// SetConfigOptionCorsAllowedOrigins parses a comma separated list of origins. An empty value leaves the list empty.
func SetConfigOptionCorsAllowedOrigins(co *config.ConfigOption) error {
	key, ok := co.ConfigKey.(*[]string)
	if !ok {
		return fmt.Errorf("the expected type for this config key is a string slice, but got a %T instead", co.ConfigKey)
	}

	raw := strings.TrimSpace(viper.GetString(co.Name))
	if raw == "" {
		*key = nil
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			log.Warn(`The value "*" for the CORS allowed origins is too permissive and not recommended.`)
			origins = append(origins, origin)
			continue
		}

		parsed, err := url.ParseRequestURI(origin)
		if err != nil {
			return fmt.Errorf("error parsing cors origin %q: %w", origin, err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("cors origin %q must include a host", origin)
		}
		origins = append(origins, origin)
	}
	*key = origins

	return nil
}
