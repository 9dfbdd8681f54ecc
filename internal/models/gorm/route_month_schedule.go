package gorm

import (
	"encoding/json"
	"fmt"
	"time"

	"skyline/flightsync/internal/models/entities"
)

// RouteMonthSchedule is the aggregate layout: every record of one route in one month,
// stored as a single document keyed by identity.
type RouteMonthSchedule struct {
	Route       string    `gorm:"column:route;primaryKey;type:varchar(7)"`
	Year        int       `gorm:"column:year;primaryKey;autoIncrement:false"`
	Month       int       `gorm:"column:month;primaryKey;autoIncrement:false"`
	Flights     string    `gorm:"column:flights;type:text;not null"`
	FlightCount int       `gorm:"column:flight_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (RouteMonthSchedule) TableName() string {
	return "schedules_by_route_month"
}

// DecodeFlights unpacks the embedded identity -> record document
func (r *RouteMonthSchedule) DecodeFlights() (map[string]entities.ScheduleRecord, error) {
	flights := make(map[string]entities.ScheduleRecord)
	if r.Flights == "" {
		return flights, nil
	}
	if err := json.Unmarshal([]byte(r.Flights), &flights); err != nil {
		return nil, fmt.Errorf("decode %s %04d-%02d: %w", r.Route, r.Year, r.Month, err)
	}
	return flights, nil
}

// EncodeFlights packs the document back into the row
func (r *RouteMonthSchedule) EncodeFlights(flights map[string]entities.ScheduleRecord) error {
	data, err := json.Marshal(flights)
	if err != nil {
		return fmt.Errorf("encode %s %04d-%02d: %w", r.Route, r.Year, r.Month, err)
	}
	r.Flights = string(data)
	r.FlightCount = len(flights)
	return nil
}
