package utils

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stellar/stellar-verify-sender/internal/crashtracker"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
)

type GlobalOptionsType struct {
	LogLevel         logrus.Level
	SentryDSN        string
	Environment      string
	Version          string
	GitCommit        string
	CrashTrackerType crashtracker.CrashTrackerType
	MetricType       monitor.MetricType
}

// Validate checks the options that depend on each other.
func (g GlobalOptionsType) Validate() error {
	if g.CrashTrackerType == crashtracker.CrashTrackerTypeSentry && strings.TrimSpace(g.SentryDSN) == "" {
		return fmt.Errorf("sentry-dsn is required when crash-tracker-type is %s", crashtracker.CrashTrackerTypeSentry)
	}
	return nil
}

// PopulateCrashTrackerOptions populates the CrashTrackerOptions from the global options.
func (g GlobalOptionsType) PopulateCrashTrackerOptions(crashTrackerOptions *crashtracker.CrashTrackerOptions) {
	if crashTrackerOptions.CrashTrackerType == "" {
		crashTrackerOptions.CrashTrackerType = g.CrashTrackerType
	}
	if crashTrackerOptions.CrashTrackerType == crashtracker.CrashTrackerTypeSentry {
		crashTrackerOptions.SentryDSN = g.SentryDSN
	}
	crashTrackerOptions.Environment = g.Environment
	crashTrackerOptions.Version = g.versionTag()
}

func (g GlobalOptionsType) versionTag() string {
	if g.GitCommit == "" {
		return g.Version
	}
	return g.Version + "-" + g.GitCommit
}

// MetricOptions returns the options used to start the monitor service.
func (g GlobalOptionsType) MetricOptions() monitor.MetricOptions {
	return monitor.MetricOptions{
		MetricType:  g.MetricType,
		Environment: g.Environment,
	}
}
