package providers

import "context"

// CollectionUnit is one (departure airport, date, time slot) request to the provider
type CollectionUnit struct {
	DepartureIATA string
	Date          string
	TimeSlot      string
}

// RawFlight is one provider entry, kept untyped until it is mapped at the boundary
type RawFlight = map[string]interface{}

// ScheduleProvider defines the contract of the upstream flight-data source
type ScheduleProvider interface {
	// FetchDepartures returns the raw departure entries for one collection unit
	FetchDepartures(ctx context.Context, unit CollectionUnit) ([]RawFlight, error)

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}
