package services

import (
	"context"

	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/providers"
)

// Mock ScheduleProvider
type mockProvider struct {
	fetchFunc func(ctx context.Context, unit providers.CollectionUnit) ([]providers.RawFlight, error)
}

func (m *mockProvider) FetchDepartures(ctx context.Context, unit providers.CollectionUnit) ([]providers.RawFlight, error) {
	return m.fetchFunc(ctx, unit)
}

func (m *mockProvider) GetProviderType() string { return "mock" }

// Mock ScheduleStore
type mockStore struct {
	saveFunc               func(ctx context.Context, record *entities.ScheduleRecord) (repositories.SaveResult, error)
	getByDateFunc          func(ctx context.Context, date, departureIATA string) ([]entities.ScheduleRecord, error)
	getByMonthFunc         func(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error)
	getByRouteAndMonthFunc func(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error)
}

func (m *mockStore) Save(ctx context.Context, record *entities.ScheduleRecord) (repositories.SaveResult, error) {
	if m.saveFunc == nil {
		return repositories.SaveResult{Created: true}, nil
	}
	return m.saveFunc(ctx, record)
}

func (m *mockStore) GetByDate(ctx context.Context, date, departureIATA string) ([]entities.ScheduleRecord, error) {
	return m.getByDateFunc(ctx, date, departureIATA)
}

func (m *mockStore) GetByMonth(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error) {
	return m.getByMonthFunc(ctx, year, month, departureIATA)
}

func (m *mockStore) GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	return m.getByRouteAndMonthFunc(ctx, route, year, month)
}

func (m *mockStore) Ping(context.Context) error { return nil }

func rawDeparture(number, arrival string) providers.RawFlight {
	return providers.RawFlight{
		"number": number,
		"status": "Expected",
		"airline": map[string]interface{}{
			"name": "Cebu Pacific",
			"iata": "5J",
		},
		"departure": map[string]interface{}{
			"scheduledTime": map[string]interface{}{"local": "2024-02-10 08:30+08:00"},
		},
		"arrival": map[string]interface{}{
			"airport":       map[string]interface{}{"iata": arrival, "name": "Manila"},
			"scheduledTime": map[string]interface{}{"local": "2024-02-10 09:55+08:00"},
		},
	}
}
