package repositories

import (
	"context"
	"fmt"

	"skyline/flightsync/internal/models/entities"
)

// Storage layouts of a schedule record
const (
	LayoutDate       = "date"
	LayoutRouteMonth = "route_month"
)

// StoreError reports a persistence failure. Layout names the layout that failed, so a
// partial dual-layout write is visible to the caller.
type StoreError struct {
	Op     string
	Layout string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Layout != "" {
		return fmt.Sprintf("schedule store %s (%s layout): %v", e.Op, e.Layout, e.Err)
	}
	return fmt.Sprintf("schedule store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// SaveResult describes what a save did to the existing state of an identity
type SaveResult struct {
	// Created is true when the identity did not exist before
	Created bool
	// Changed is true when an existing identity was replaced by different field values
	Changed bool
	// Previous holds the replaced record when Changed is true
	Previous *entities.ScheduleRecord
}

// ScheduleStore persists schedule records under both the date layout and the
// route+month aggregate layout. Callers never write a single layout directly.
type ScheduleStore interface {
	// Save upserts the record into both layouts by identity
	Save(ctx context.Context, record *entities.ScheduleRecord) (SaveResult, error)

	// GetByDate returns the records of one date, optionally for one departure airport
	GetByDate(ctx context.Context, date string, departureIATA string) ([]entities.ScheduleRecord, error)

	// GetByMonth scans every date of a month, optionally for one departure airport
	GetByMonth(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error)

	// GetByRouteAndMonth reads the aggregate partition of one route in one month
	GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error)

	// Ping checks the backing store is reachable
	Ping(ctx context.Context) error
}

// compareWithPrevious builds the SaveResult for a record given what the aggregate held before
func compareWithPrevious(record *entities.ScheduleRecord, prev *entities.ScheduleRecord) SaveResult {
	if prev == nil {
		return SaveResult{Created: true}
	}
	if record.SameContent(prev) {
		return SaveResult{}
	}
	return SaveResult{Changed: true, Previous: prev}
}

func routeMonthID(route string, year, month int) string {
	return fmt.Sprintf("%s_%04d-%02d", route, year, month)
}
