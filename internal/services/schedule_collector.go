package services

import (
	"context"
	"errors"

	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/metrics"
	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/providers"
)

// ScheduleCollector fetches one collection unit from the provider and persists the
// mapped records. It never retries; retry policy belongs to the caller.
type ScheduleCollector struct {
	provider providers.ScheduleProvider
	store    repositories.ScheduleStore
	metrics  *metrics.MetricsRegistry
}

// NewScheduleCollector creates a collector. metrics may be nil.
func NewScheduleCollector(provider providers.ScheduleProvider, store repositories.ScheduleStore, m *metrics.MetricsRegistry) *ScheduleCollector {
	return &ScheduleCollector{
		provider: provider,
		store:    store,
		metrics:  m,
	}
}

// FetchAndStore makes exactly one provider call for the unit and saves every record it
// yields. It returns the number of records saved. Provider failures come back as
// *providers.ProviderError or *providers.RateLimitError, persistence failures as
// *repositories.StoreError.
func (c *ScheduleCollector) FetchAndStore(ctx context.Context, unit providers.CollectionUnit) (int, error) {
	dep, err := entities.NormalizeIATA("departureIata", unit.DepartureIATA)
	if err != nil {
		return 0, err
	}
	if _, err := entities.ParseDate(unit.Date); err != nil {
		return 0, err
	}
	if err := entities.ValidateTimeSlot(unit.TimeSlot); err != nil {
		return 0, err
	}
	unit.DepartureIATA = dep

	raw, err := c.provider.FetchDepartures(ctx, unit)
	c.recordCall(unit.TimeSlot, err)
	if err != nil {
		logging.Warn("Provider call failed",
			"departure_iata", unit.DepartureIATA,
			"date", unit.Date,
			"time_slot", unit.TimeSlot,
			"provider", c.provider.GetProviderType(),
			"error", err.Error(),
		)
		return 0, err
	}

	mapped := providers.MapDepartures(unit, raw)
	for _, skipped := range mapped.Skipped {
		logging.Debug("Skipped provider entry",
			"departure_iata", unit.DepartureIATA,
			"date", unit.Date,
			"index", skipped.Index,
			"reason", skipped.Reason,
		)
	}

	saved := 0
	for i := range mapped.Records {
		rec := &mapped.Records[i]

		res, err := c.store.Save(ctx, rec)
		if err != nil {
			logging.Error("Failed to save schedule record",
				"identity", rec.IdentityKey(),
				"saved_before_failure", saved,
				"error", err.Error(),
			)
			c.recordSaved(unit.DepartureIATA, saved)

			var sErr *repositories.StoreError
			if errors.As(err, &sErr) {
				return saved, err
			}
			return saved, &repositories.StoreError{Op: "save", Err: err}
		}

		if res.Changed {
			logging.Warn("Schedule record overwritten with different values",
				"identity", rec.IdentityKey(),
				"previous_status", res.Previous.Status,
				"status", rec.Status,
				"previous_departure", res.Previous.ScheduledDepartureTime,
				"departure", rec.ScheduledDepartureTime,
			)
			if c.metrics != nil {
				c.metrics.RecordsOverwrittenTotal.Inc()
			}
		}
		saved++
	}

	c.recordSaved(unit.DepartureIATA, saved)
	logging.Info("Collected schedule unit",
		"departure_iata", unit.DepartureIATA,
		"date", unit.Date,
		"time_slot", unit.TimeSlot,
		"received", len(raw),
		"saved", saved,
		"skipped", len(mapped.Skipped),
	)
	return saved, nil
}

func (c *ScheduleCollector) recordCall(slot string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	var rlErr *providers.RateLimitError
	switch {
	case errors.As(err, &rlErr):
		outcome = "rate_limited"
	case err != nil:
		outcome = "error"
	}
	c.metrics.ProviderCallsTotal.WithLabelValues(slot, outcome).Inc()
}

func (c *ScheduleCollector) recordSaved(dep string, n int) {
	if c.metrics == nil || n == 0 {
		return
	}
	c.metrics.RecordsSavedTotal.WithLabelValues(dep).Add(float64(n))
}
