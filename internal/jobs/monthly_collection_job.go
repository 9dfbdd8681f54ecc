package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/metrics"
	"skyline/flightsync/internal/models/dtos"
	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/providers"
)

// Pacing required by the upstream provider's rate limit
const (
	SlotDelay = 2 * time.Second
	DayDelay  = 3 * time.Second
)

// DelayFunc blocks for d or until ctx is done
type DelayFunc func(ctx context.Context, d time.Duration) error

// SleepDelay is the production DelayFunc
func SleepDelay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UnitCollector collects a single (airport, date, time slot) unit
type UnitCollector interface {
	FetchAndStore(ctx context.Context, unit providers.CollectionUnit) (int, error)
}

// CollectionResult holds the totals of one monthly run
type CollectionResult struct {
	// TotalSaved counts every persisted record, including the saved half of a failed
	// day and the partial count of a unit whose store write failed
	TotalSaved    int
	TotalDays     int
	TotalAPICalls int
	FailedDates   []string
}

// MonthlyCollectionJob walks every day of a month and collects both time slots of each
// day, one unit at a time. A failed unit abandons its day; the run always moves on.
type MonthlyCollectionJob struct {
	collector UnitCollector
	delay     DelayFunc
	airports  []string
	metrics   *metrics.MetricsRegistry
	now       func() time.Time

	// runMu keeps runs sequential so the pacing above holds across callers
	runMu sync.Mutex

	statusMu sync.RWMutex
	status   dtos.CollectionRunStatus
}

// NewMonthlyCollectionJob creates the job. A nil delay uses SleepDelay; metrics may be nil.
func NewMonthlyCollectionJob(collector UnitCollector, delay DelayFunc, airports []string, m *metrics.MetricsRegistry) *MonthlyCollectionJob {
	if delay == nil {
		delay = SleepDelay
	}
	return &MonthlyCollectionJob{
		collector: collector,
		delay:     delay,
		airports:  airports,
		metrics:   m,
		now:       time.Now,
	}
}

// CollectMonth collects departureIATA for month ("YYYY-MM"). Per-day failures are logged
// and absorbed. A cancelled ctx stops the run; records saved so far stay persisted.
func (j *MonthlyCollectionJob) CollectMonth(ctx context.Context, departureIATA, month string) (CollectionResult, error) {
	dep, err := entities.NormalizeIATA("departureIata", departureIATA)
	if err != nil {
		return CollectionResult{}, err
	}
	year, mon, err := entities.ParseMonth(month)
	if err != nil {
		return CollectionResult{}, err
	}

	j.runMu.Lock()
	defer j.runMu.Unlock()

	start := j.now()
	j.setStatus(dtos.CollectionRunStatus{
		Running:       true,
		DepartureIATA: dep,
		Month:         month,
		StartedAt:     start.UTC().Format(time.RFC3339),
	})

	days := entities.DaysInMonth(year, mon)
	logging.Info("Starting monthly collection", "departure_iata", dep, "month", month, "days", days)

	var result CollectionResult
	runErr := j.collectDays(ctx, dep, year, mon, days, &result)

	if j.metrics != nil {
		j.metrics.CollectionRunDuration.WithLabelValues(dep).Observe(time.Since(start).Seconds())
	}

	final := dtos.CollectionRunStatus{
		DepartureIATA: dep,
		Month:         month,
		StartedAt:     start.UTC().Format(time.RFC3339),
		CompletedAt:   j.now().UTC().Format(time.RFC3339),
		TotalSaved:    result.TotalSaved,
		TotalDays:     result.TotalDays,
		TotalAPICalls: result.TotalAPICalls,
		FailedDates:   result.FailedDates,
	}
	if runErr != nil {
		final.Error = runErr.Error()
		logging.Warn("Monthly collection stopped early",
			"departure_iata", dep, "month", month,
			"total_saved", result.TotalSaved, "total_days", result.TotalDays,
			"total_api_calls", result.TotalAPICalls, "error", runErr.Error())
	} else {
		logging.Info("Completed monthly collection",
			"departure_iata", dep, "month", month,
			"total_saved", result.TotalSaved, "total_days", result.TotalDays,
			"total_api_calls", result.TotalAPICalls, "failed_days", len(result.FailedDates),
			"duration", time.Since(start).Truncate(time.Millisecond).String())
	}
	j.setStatus(final)

	return result, runErr
}

func (j *MonthlyCollectionJob) collectDays(ctx context.Context, dep string, year, month, days int, result *CollectionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for day := 1; day <= days; day++ {
		date := entities.FormatDate(year, month, day)
		dayFailed := false

		for i, slot := range constants.TimeSlots {
			if i > 0 {
				if err := j.delay(ctx, SlotDelay); err != nil {
					return err
				}
			}

			unit := providers.CollectionUnit{DepartureIATA: dep, Date: date, TimeSlot: slot}
			saved, err := j.collector.FetchAndStore(ctx, unit)
			result.TotalAPICalls++
			result.TotalSaved += saved

			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				dayFailed = true
				logging.Warn("Collection unit failed, day abandoned",
					"departure_iata", dep,
					"date", date,
					"time_slot", slot,
					"kind", failureKind(err),
					"error", err.Error(),
				)
			}
		}

		if dayFailed {
			result.FailedDates = append(result.FailedDates, date)
			j.recordDay(dep, "failed")
		} else {
			result.TotalDays++
			j.recordDay(dep, "success")
		}
		j.updateProgress(*result)

		if day < days {
			if err := j.delay(ctx, DayDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run collects the current month for every configured airport, one after another
func (j *MonthlyCollectionJob) Run(ctx context.Context) error {
	month := j.now().UTC().Format("2006-01")

	var errs []error
	for _, airport := range j.airports {
		if _, err := j.CollectMonth(ctx, airport, month); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s %s: %w", airport, month, err))
		}
	}
	return errors.Join(errs...)
}

// RunScheduled runs the job every interval until ctx is done
func (j *MonthlyCollectionJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Error("Scheduled monthly collection failed", "error", err.Error())
			}
		case <-ctx.Done():
			logging.Info("Shutting down scheduled monthly collection")
			return
		}
	}
}

// Status returns a snapshot of the latest run
func (j *MonthlyCollectionJob) Status() dtos.CollectionRunStatus {
	j.statusMu.RLock()
	defer j.statusMu.RUnlock()

	s := j.status
	s.FailedDates = append([]string(nil), j.status.FailedDates...)
	return s
}

func (j *MonthlyCollectionJob) setStatus(s dtos.CollectionRunStatus) {
	j.statusMu.Lock()
	j.status = s
	j.statusMu.Unlock()
}

func (j *MonthlyCollectionJob) updateProgress(r CollectionResult) {
	j.statusMu.Lock()
	j.status.TotalSaved = r.TotalSaved
	j.status.TotalDays = r.TotalDays
	j.status.TotalAPICalls = r.TotalAPICalls
	j.status.FailedDates = append([]string(nil), r.FailedDates...)
	j.statusMu.Unlock()
}

func (j *MonthlyCollectionJob) recordDay(dep, outcome string) {
	if j.metrics != nil {
		j.metrics.IngestionDaysTotal.WithLabelValues(dep, outcome).Inc()
	}
}

func failureKind(err error) string {
	var (
		rlErr *providers.RateLimitError
		pErr  *providers.ProviderError
		sErr  *repositories.StoreError
	)
	switch {
	case errors.As(err, &rlErr):
		return "rate_limited"
	case errors.As(err, &pErr):
		return "provider"
	case errors.As(err, &sErr):
		return "store"
	default:
		return "unknown"
	}
}
