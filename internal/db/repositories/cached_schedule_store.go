package repositories

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"skyline/flightsync/internal/common"
	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/metrics"
	"skyline/flightsync/internal/models/entities"
)

// CachedScheduleStore serves route+month reads from cache. Each aggregate is one cache
// entry, and saving a record drops the entry of its route+month.
//
// A read that overlaps a save of the same key never fills the cache: every save bumps
// the key's generation before and after writing, and a loader only stores its snapshot
// when the generation it started with is still current.
type CachedScheduleStore struct {
	ScheduleStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry

	genMu       sync.Mutex
	generations map[string]uint64
}

var _ ScheduleStore = (*CachedScheduleStore)(nil)

// NewCachedScheduleStore wraps next. metrics may be nil.
func NewCachedScheduleStore(next ScheduleStore, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *CachedScheduleStore {
	return &CachedScheduleStore{
		ScheduleStore: next,
		cache:         cache,
		ttl:           ttl,
		metrics:       m,
		generations:   make(map[string]uint64),
	}
}

// Save delegates, then invalidates the aggregate entry. The entry is dropped even when
// the save failed, since a partial write may have reached the aggregate.
func (s *CachedScheduleStore) Save(ctx context.Context, record *entities.ScheduleRecord) (SaveResult, error) {
	year, month := record.YearMonth()
	key := routeMonthCacheKey(record.Route, year, month)

	s.bump(key)
	res, err := s.ScheduleStore.Save(ctx, record)
	s.bump(key)

	s.cache.Delete(ctx, key)
	return res, err
}

func (s *CachedScheduleStore) GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	key := routeMonthCacheKey(route, year, month)

	if data, found := s.cache.Get(ctx, key); found {
		var records []entities.ScheduleRecord
		err := json.Unmarshal(data, &records)
		if err == nil {
			s.recordLookup(true)
			if records == nil {
				records = []entities.ScheduleRecord{}
			}
			return records, nil
		}
		// A corrupt entry is dropped and the aggregate read straight from the store
		logging.Warn("Discarding unreadable cache entry", "key", key, "error", err.Error())
		s.cache.Delete(ctx, key)
	}
	s.recordLookup(false)

	gen := s.generation(key)
	records, err := s.ScheduleStore.GetByRouteAndMonth(ctx, route, year, month)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		s.setIfCurrent(ctx, key, gen, data)
	}
	return records, nil
}

// setIfCurrent fills the entry unless a save touched key since gen was read. The lock
// is held across Set so a save's trailing bump and Delete always land after it.
func (s *CachedScheduleStore) setIfCurrent(ctx context.Context, key string, gen uint64, data []byte) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[key] == gen {
		s.cache.Set(ctx, key, data, s.ttl)
	}
}

func (s *CachedScheduleStore) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[key]
}

func (s *CachedScheduleStore) bump(key string) {
	s.genMu.Lock()
	s.generations[key]++
	s.genMu.Unlock()
}

func (s *CachedScheduleStore) recordLookup(hit bool) {
	if s.metrics == nil {
		return
	}
	pattern := string(constants.CachePrefixRouteMonth)
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues(pattern).Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues(pattern).Inc()
	}
}

func routeMonthCacheKey(route string, year, month int) string {
	return string(constants.CachePrefixRouteMonth) + routeMonthID(route, year, month)
}
