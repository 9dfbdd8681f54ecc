package jobs

import (
	"context"
	"time"

	"skyline/flightsync/internal/logging"
)

// InitializeJobs starts the background jobs that are enabled
func InitializeJobs(ctx context.Context, collectionJob *MonthlyCollectionJob, scheduleEnabled bool, interval time.Duration) {
	if !scheduleEnabled {
		logging.Info("Scheduled monthly collection disabled")
		return
	}

	logging.Info("Starting scheduled monthly collection", "interval", interval.String())
	go collectionJob.RunScheduled(ctx, interval)
}
