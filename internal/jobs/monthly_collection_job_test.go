package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/providers"
)

// Mock UnitCollector
type mockCollector struct {
	mu          sync.Mutex
	units       []providers.CollectionUnit
	fetchFunc   func(ctx context.Context, unit providers.CollectionUnit) (int, error)
	onEachFetch func()
}

func (m *mockCollector) FetchAndStore(ctx context.Context, unit providers.CollectionUnit) (int, error) {
	m.mu.Lock()
	m.units = append(m.units, unit)
	m.mu.Unlock()
	if m.onEachFetch != nil {
		m.onEachFetch()
	}
	return m.fetchFunc(ctx, unit)
}

type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (d *delayRecorder) delay(ctx context.Context, dur time.Duration) error {
	d.mu.Lock()
	d.delays = append(d.delays, dur)
	d.mu.Unlock()
	return ctx.Err()
}

func (d *delayRecorder) count(dur time.Duration) int {
	n := 0
	for _, v := range d.delays {
		if v == dur {
			n++
		}
	}
	return n
}

func alwaysSaves(n int) func(context.Context, providers.CollectionUnit) (int, error) {
	return func(context.Context, providers.CollectionUnit) (int, error) { return n, nil }
}

func TestCollectMonth_SingleFailedDay(t *testing.T) {
	collector := &mockCollector{
		fetchFunc: func(ctx context.Context, unit providers.CollectionUnit) (int, error) {
			if unit.Date == "2024-02-28" {
				return 0, &providers.ProviderError{Code: "UPSTREAM_ERROR", Message: "HTTP 500"}
			}
			return 3, nil
		},
	}
	rec := &delayRecorder{}
	job := NewMonthlyCollectionJob(collector, rec.delay, nil, nil)

	result, err := job.CollectMonth(context.Background(), "CEB", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, 58, result.TotalAPICalls)
	assert.Equal(t, 28, result.TotalDays)
	assert.Equal(t, 28*2*3, result.TotalSaved)
	assert.Equal(t, []string{"2024-02-28"}, result.FailedDates)
}

func TestCollectMonth_FailedDayKeepsItsPersistedRecords(t *testing.T) {
	collector := &mockCollector{
		fetchFunc: func(ctx context.Context, unit providers.CollectionUnit) (int, error) {
			switch {
			case unit.Date == "2024-02-10" && unit.TimeSlot == "12-00":
				return 0, &providers.ProviderError{Code: "UPSTREAM_ERROR", Message: "HTTP 502"}
			case unit.Date == "2024-02-11" && unit.TimeSlot == "00-12":
				return 2, &repositories.StoreError{Op: "save", Layout: repositories.LayoutRouteMonth, Err: errors.New("write conflict")}
			}
			return 3, nil
		},
	}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

	result, err := job.CollectMonth(context.Background(), "CEB", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, 58, result.TotalAPICalls)
	assert.Equal(t, 27, result.TotalDays)
	assert.Equal(t, []string{"2024-02-10", "2024-02-11"}, result.FailedDates)
	// 56 clean calls, plus the two records that reached the store before the write failed
	assert.Equal(t, 56*3+2, result.TotalSaved)
}

func TestCollectMonth_EndToEndExample(t *testing.T) {
	// 3 records per call for days 1-27, every call fails from day 28 on
	collector := &mockCollector{
		fetchFunc: func(ctx context.Context, unit providers.CollectionUnit) (int, error) {
			if unit.Date >= "2024-02-28" {
				return 0, &providers.RateLimitError{}
			}
			return 3, nil
		},
	}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

	result, err := job.CollectMonth(context.Background(), "CEB", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, 58, result.TotalAPICalls)
	assert.Equal(t, 27, result.TotalDays)
	assert.Equal(t, 162, result.TotalSaved)
	assert.Equal(t, []string{"2024-02-28", "2024-02-29"}, result.FailedDates)
}

func TestCollectMonth_CallsBothSlotsEveryDay(t *testing.T) {
	tests := []struct {
		month string
		days  int
	}{
		{"2024-02", 29},
		{"2023-02", 28},
		{"2024-01", 31},
		{"2024-04", 30},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			collector := &mockCollector{fetchFunc: alwaysSaves(1)}
			job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

			result, err := job.CollectMonth(context.Background(), "CEB", tt.month)
			require.NoError(t, err)

			assert.Equal(t, 2*tt.days, result.TotalAPICalls)
			assert.Equal(t, tt.days, result.TotalDays)
			require.Len(t, collector.units, 2*tt.days)

			first, second := collector.units[0], collector.units[1]
			assert.Equal(t, tt.month+"-01", first.Date)
			assert.Equal(t, "00-12", first.TimeSlot)
			assert.Equal(t, tt.month+"-01", second.Date)
			assert.Equal(t, "12-00", second.TimeSlot)
		})
	}
}

func TestCollectMonth_EveryDayFailingStillMakesAllCalls(t *testing.T) {
	collector := &mockCollector{
		fetchFunc: func(ctx context.Context, unit providers.CollectionUnit) (int, error) {
			return 0, &repositories.StoreError{Op: "save", Err: errors.New("down")}
		},
	}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

	result, err := job.CollectMonth(context.Background(), "CEB", "2023-02")
	require.NoError(t, err)
	assert.Equal(t, 56, result.TotalAPICalls)
	assert.Equal(t, 0, result.TotalDays)
	assert.Len(t, result.FailedDates, 28)
}

func TestCollectMonth_DelaySequence(t *testing.T) {
	collector := &mockCollector{
		fetchFunc: func(ctx context.Context, unit providers.CollectionUnit) (int, error) {
			if unit.Date == "2024-02-10" && unit.TimeSlot == "00-12" {
				return 0, errors.New("boom")
			}
			return 0, nil
		},
	}
	rec := &delayRecorder{}
	job := NewMonthlyCollectionJob(collector, rec.delay, nil, nil)

	_, err := job.CollectMonth(context.Background(), "CEB", "2024-02")
	require.NoError(t, err)

	assert.Equal(t, 29, rec.count(SlotDelay))
	assert.Equal(t, 28, rec.count(DayDelay))
	require.NotEmpty(t, rec.delays)
	assert.Equal(t, SlotDelay, rec.delays[0])
	assert.Equal(t, SlotDelay, rec.delays[len(rec.delays)-1], "no day delay after the last day")
}

func TestCollectMonth_InvalidInputMakesNoCalls(t *testing.T) {
	tests := []struct {
		name, dep, month string
	}{
		{"month thirteen", "CEB", "2024-13"},
		{"month zero", "CEB", "2024-00"},
		{"bad format", "CEB", "2024-2"},
		{"bad airport", "CEBU", "2024-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := &mockCollector{fetchFunc: alwaysSaves(1)}
			job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

			_, err := job.CollectMonth(context.Background(), tt.dep, tt.month)

			var vErr *entities.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Empty(t, collector.units)
		})
	}
}

func TestCollectMonth_CancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	collector := &mockCollector{
		fetchFunc: alwaysSaves(2),
		onEachFetch: func() {
			calls++
			if calls == 6 {
				cancel()
			}
		},
	}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

	result, err := job.CollectMonth(ctx, "CEB", "2024-02")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 6, result.TotalAPICalls)
	assert.Equal(t, 12, result.TotalSaved, "records saved before cancellation are kept")
	assert.Equal(t, 2, result.TotalDays)

	status := job.Status()
	assert.False(t, status.Running)
	assert.NotEmpty(t, status.Error)
}

func TestCollectMonth_StatusAfterRun(t *testing.T) {
	collector := &mockCollector{fetchFunc: alwaysSaves(1)}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, nil, nil)

	_, err := job.CollectMonth(context.Background(), "ceb", "2023-02")
	require.NoError(t, err)

	status := job.Status()
	assert.False(t, status.Running)
	assert.Equal(t, "CEB", status.DepartureIATA)
	assert.Equal(t, "2023-02", status.Month)
	assert.Equal(t, 56, status.TotalAPICalls)
	assert.Equal(t, 56, status.TotalSaved)
	assert.NotEmpty(t, status.CompletedAt)
}

func TestRun_CollectsCurrentMonthForEveryAirport(t *testing.T) {
	collector := &mockCollector{fetchFunc: alwaysSaves(0)}
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, []string{"CEB", "MNL"}, nil)
	job.now = func() time.Time { return time.Date(2023, 2, 14, 6, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, collector.units, 2*2*28)
	assert.Equal(t, "CEB", collector.units[0].DepartureIATA)
	assert.Equal(t, "MNL", collector.units[len(collector.units)-1].DepartureIATA)
	assert.Equal(t, "2023-02-28", collector.units[len(collector.units)-1].Date)
}

func TestSleepDelay_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SleepDelay(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunScheduled_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := &mockCollector{fetchFunc: alwaysSaves(1)}
	collector.onEachFetch = cancel
	job := NewMonthlyCollectionJob(collector, (&delayRecorder{}).delay, []string{"CEB"}, nil)
	job.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	done := make(chan struct{})
	go func() {
		job.RunScheduled(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunScheduled did not stop after cancellation")
	}

	collector.mu.Lock()
	defer collector.mu.Unlock()
	assert.Len(t, collector.units, 1)
	assert.Equal(t, "2024-02-01", collector.units[0].Date)
}
