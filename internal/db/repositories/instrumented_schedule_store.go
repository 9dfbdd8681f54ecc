package repositories

import (
	"context"
	"time"

	"skyline/flightsync/internal/metrics"
	"skyline/flightsync/internal/models/entities"
)

// InstrumentedScheduleStore records operation counts and latency of the wrapped store
type InstrumentedScheduleStore struct {
	next    ScheduleStore
	metrics *metrics.MetricsRegistry
}

var _ ScheduleStore = (*InstrumentedScheduleStore)(nil)

func NewInstrumentedScheduleStore(next ScheduleStore, m *metrics.MetricsRegistry) *InstrumentedScheduleStore {
	return &InstrumentedScheduleStore{next: next, metrics: m}
}

func (s *InstrumentedScheduleStore) Save(ctx context.Context, record *entities.ScheduleRecord) (SaveResult, error) {
	start := time.Now()
	res, err := s.next.Save(ctx, record)
	s.observe("save", start, err)
	return res, err
}

func (s *InstrumentedScheduleStore) GetByDate(ctx context.Context, date string, departureIATA string) ([]entities.ScheduleRecord, error) {
	start := time.Now()
	records, err := s.next.GetByDate(ctx, date, departureIATA)
	s.observe("get_by_date", start, err)
	return records, err
}

func (s *InstrumentedScheduleStore) GetByMonth(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error) {
	start := time.Now()
	records, err := s.next.GetByMonth(ctx, year, month, departureIATA)
	s.observe("get_by_month", start, err)
	return records, err
}

func (s *InstrumentedScheduleStore) GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	start := time.Now()
	records, err := s.next.GetByRouteAndMonth(ctx, route, year, month)
	s.observe("get_by_route_month", start, err)
	return records, err
}

func (s *InstrumentedScheduleStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *InstrumentedScheduleStore) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.StoreOpsTotal.WithLabelValues(op, outcome).Inc()
	s.metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
