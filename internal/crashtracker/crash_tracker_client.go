package crashtracker

import (
	"context"
	"time"
)

// CrashTrackerClient reports unexpected failures of the verification service to an external tracker.
type CrashTrackerClient interface {
	// LogAndReportErrors logs err, prefixed with msg when msg is not empty, and reports it.
	LogAndReportErrors(ctx context.Context, err error, msg string)
	// LogAndReportMessages logs and reports a message that is not backed by an error, e.g. a refused approval.
	LogAndReportMessages(ctx context.Context, msg string)
	// FlushEvents blocks until buffered events are sent or waitTime elapses. It returns false on timeout.
	FlushEvents(waitTime time.Duration) bool
	// Recover reports a panic and swallows it. It only works when deferred directly.
	Recover()
	// Clone returns a client with its own scope, to be used by a new goroutine.
	Clone() CrashTrackerClient
}
