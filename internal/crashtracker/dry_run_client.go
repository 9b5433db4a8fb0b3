package crashtracker

import (
	"context"
	"fmt"
	"time"

	"github.com/stellar/go-stellar-sdk/support/log"
)

const dryRunPrefix = "[DRY_RUN Crash Reporter]"

type dryRunClient struct{}

var _ CrashTrackerClient = (*dryRunClient)(nil)

func NewDryRunClient() *dryRunClient {
	return &dryRunClient{}
}

func (d *dryRunClient) LogAndReportErrors(ctx context.Context, err error, msg string) {
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).Errorf("%s %+v", dryRunPrefix, err)
}

func (d *dryRunClient) LogAndReportMessages(ctx context.Context, msg string) {
	log.Ctx(ctx).Infof("%s %s", dryRunPrefix, msg)
}

func (d *dryRunClient) FlushEvents(time.Duration) bool {
	return false
}

func (d *dryRunClient) Recover() {}

func (d *dryRunClient) Clone() CrashTrackerClient {
	return &dryRunClient{}
}
