package repositories

import (
	"context"
	"errors"
	"time"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/models/gorm"
)

// GormScheduleStore keeps both layouts in relational tables and updates them in one
// transaction per record.
type GormScheduleStore struct {
	db           *gormlib.DB
	byDate       gormDateLayout
	byRouteMonth gormRouteMonthLayout
}

var _ ScheduleStore = (*GormScheduleStore)(nil)

// NewGormScheduleStore creates a store over db
func NewGormScheduleStore(db *gormlib.DB) *GormScheduleStore {
	return &GormScheduleStore{db: db}
}

// AutoMigrate creates the tables of both layouts
func (s *GormScheduleStore) AutoMigrate() error {
	return s.db.AutoMigrate(&gorm.ScheduleByDate{}, &gorm.RouteMonthSchedule{})
}

// Save upserts into both layouts inside one transaction
func (s *GormScheduleStore) Save(ctx context.Context, record *entities.ScheduleRecord) (SaveResult, error) {
	var result SaveResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := s.byDate.upsert(tx, record); err != nil {
			return &StoreError{Op: "save", Layout: LayoutDate, Err: err}
		}

		prev, err := s.byRouteMonth.upsert(tx, record)
		if err != nil {
			return &StoreError{Op: "save", Layout: LayoutRouteMonth, Err: err}
		}

		result = compareWithPrevious(record, prev)
		return nil
	})
	if err != nil {
		var sErr *StoreError
		if errors.As(err, &sErr) {
			return SaveResult{}, err
		}
		return SaveResult{}, &StoreError{Op: "save", Err: err}
	}

	return result, nil
}

// GetByDate returns the records of one date
func (s *GormScheduleStore) GetByDate(ctx context.Context, date string, departureIATA string) ([]entities.ScheduleRecord, error) {
	records, err := s.byDate.find(s.db.WithContext(ctx), date, date, departureIATA)
	if err != nil {
		return nil, &StoreError{Op: "get_by_date", Layout: LayoutDate, Err: err}
	}
	return records, nil
}

// GetByMonth scans the date layout across the whole month
func (s *GormScheduleStore) GetByMonth(ctx context.Context, year, month int, departureIATA string) ([]entities.ScheduleRecord, error) {
	first, last := entities.MonthDateRange(year, month)
	records, err := s.byDate.find(s.db.WithContext(ctx), first, last, departureIATA)
	if err != nil {
		return nil, &StoreError{Op: "get_by_month", Layout: LayoutDate, Err: err}
	}
	return records, nil
}

// GetByRouteAndMonth reads a single aggregate row
func (s *GormScheduleStore) GetByRouteAndMonth(ctx context.Context, route string, year, month int) ([]entities.ScheduleRecord, error) {
	records, err := s.byRouteMonth.find(s.db.WithContext(ctx), route, year, month)
	if err != nil {
		return nil, &StoreError{Op: "get_by_route_month", Layout: LayoutRouteMonth, Err: err}
	}
	return records, nil
}

// Ping checks the underlying connection pool
func (s *GormScheduleStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}

// gormDateLayout is the schedules_by_date adapter
type gormDateLayout struct{}

// upsert inserts the row or replaces its descriptive columns
// ON CONFLICT (identity_key) DO UPDATE
func (gormDateLayout) upsert(tx *gormlib.DB, record *entities.ScheduleRecord) error {
	row := gorm.NewScheduleByDate(record)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_key"}},
		DoUpdates: clause.AssignmentColumns(row.UpdatableColumns()),
	}).Create(row).Error
}

func (gormDateLayout) find(db *gormlib.DB, fromDate, toDate, departureIATA string) ([]entities.ScheduleRecord, error) {
	var rows []gorm.ScheduleByDate

	q := db.Where("date BETWEEN ? AND ?", fromDate, toDate)
	if departureIATA != "" {
		q = q.Where("departure_iata = ?", departureIATA)
	}

	if err := q.Order("date ASC, scheduled_departure_time ASC, flight_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]entities.ScheduleRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}
	entities.SortRecords(records)
	return records, nil
}

// gormRouteMonthLayout is the schedules_by_route_month adapter
type gormRouteMonthLayout struct{}

// upsert merges the record into its route+month document and returns the entry it replaced
func (gormRouteMonthLayout) upsert(tx *gormlib.DB, record *entities.ScheduleRecord) (*entities.ScheduleRecord, error) {
	year, month := record.YearMonth()

	// Make sure the document exists so the row lock below always has a row to hold
	seed := &gorm.RouteMonthSchedule{Route: record.Route, Year: year, Month: month, Flights: "{}"}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return nil, err
	}

	var doc gorm.RouteMonthSchedule
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("route = ? AND year = ? AND month = ?", record.Route, year, month).
		Take(&doc).Error
	if err != nil {
		return nil, err
	}

	flights, err := doc.DecodeFlights()
	if err != nil {
		return nil, err
	}

	key := record.IdentityKey()
	var prev *entities.ScheduleRecord
	if existing, ok := flights[key]; ok {
		prev = &existing
	}
	flights[key] = *record

	if err := doc.EncodeFlights(flights); err != nil {
		return nil, err
	}

	err = tx.Model(&gorm.RouteMonthSchedule{}).
		Where("route = ? AND year = ? AND month = ?", record.Route, year, month).
		Updates(map[string]interface{}{
			"flights":      doc.Flights,
			"flight_count": doc.FlightCount,
			"updated_at":   time.Now().UTC(),
		}).Error
	if err != nil {
		return nil, err
	}

	return prev, nil
}

func (gormRouteMonthLayout) find(db *gormlib.DB, route string, year, month int) ([]entities.ScheduleRecord, error) {
	var doc gorm.RouteMonthSchedule
	err := db.Where("route = ? AND year = ? AND month = ?", route, year, month).Take(&doc).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return []entities.ScheduleRecord{}, nil
		}
		return nil, err
	}

	flights, err := doc.DecodeFlights()
	if err != nil {
		return nil, err
	}

	records := make([]entities.ScheduleRecord, 0, len(flights))
	for _, rec := range flights {
		records = append(records, rec)
	}
	entities.SortRecords(records)
	return records, nil
}
