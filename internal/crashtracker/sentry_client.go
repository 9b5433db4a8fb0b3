package crashtracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stellar/go-stellar-sdk/support/log"
)

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	CaptureMessage(message string) *sentry.EventID
	Clone() *sentry.Hub
	Flush(timeout time.Duration) bool
	Recover(err interface{}) *sentry.EventID
}

var _ sentryHub = (*sentry.Hub)(nil)

type sentryClient struct {
	hub sentryHub
}

var _ CrashTrackerClient = (*sentryClient)(nil)

// NewSentryClient initializes the global Sentry client and binds the tracker to its current hub.
func NewSentryClient(opts CrashTrackerOptions) (*sentryClient, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Release:     opts.Version,
		Environment: opts.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing sentry: %w", err)
	}

	hub := sentry.CurrentHub()
	if len(opts.Tags) > 0 {
		hub.Scope().SetTags(opts.Tags)
	}

	return &sentryClient{hub: hub}, nil
}

func (s *sentryClient) LogAndReportErrors(ctx context.Context, err error, msg string) {
	if errors.Is(err, context.Canceled) {
		log.Ctx(ctx).Warn("context canceled, not reporting error to sentry")
		return
	}

	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).WithStack(err).Errorf("%+v", err)
	s.hub.CaptureException(err)
}

func (s *sentryClient) LogAndReportMessages(ctx context.Context, msg string) {
	log.Ctx(ctx).Info(msg)
	s.hub.CaptureMessage(msg)
}

// FlushEvents waits up to waitTime for buffered events to be delivered.
func (s *sentryClient) FlushEvents(waitTime time.Duration) bool {
	return s.hub.Flush(waitTime)
}

// Recover must be deferred directly, otherwise recover() returns nil.
func (s *sentryClient) Recover() {
	if err := recover(); err != nil {
		s.hub.Recover(err)
	}
}

func (s *sentryClient) Clone() CrashTrackerClient {
	return &sentryClient{hub: s.hub.Clone()}
}
