package gorm

import (
	"time"

	"skyline/flightsync/internal/models/entities"
)

// ScheduleByDate is the date-keyed layout: one row per schedule identity
type ScheduleByDate struct {
	IdentityKey            string    `gorm:"column:identity_key;primaryKey;type:varchar(64)"`
	Date                   string    `gorm:"column:date;type:varchar(10);not null;index:idx_sched_date_dep,priority:1"`
	DepartureIATA          string    `gorm:"column:departure_iata;type:varchar(3);not null;index:idx_sched_date_dep,priority:2"`
	ArrivalIATA            string    `gorm:"column:arrival_iata;type:varchar(3);not null"`
	Route                  string    `gorm:"column:route;type:varchar(7);not null"`
	TimeSlot               string    `gorm:"column:time_slot;type:varchar(5);not null"`
	FlightNumber           string    `gorm:"column:flight_number;type:varchar(16);not null"`
	Carrier                string    `gorm:"column:carrier;type:text"`
	CarrierIATA            string    `gorm:"column:carrier_iata;type:varchar(3)"`
	ScheduledDepartureTime string    `gorm:"column:scheduled_departure_time;type:varchar(32)"`
	ScheduledArrivalTime   string    `gorm:"column:scheduled_arrival_time;type:varchar(32)"`
	ArrivalAirportName     string    `gorm:"column:arrival_airport_name;type:text"`
	DepartureTerminal      string    `gorm:"column:departure_terminal;type:varchar(16)"`
	Status                 string    `gorm:"column:status;type:varchar(32)"`
	AircraftModel          string    `gorm:"column:aircraft_model;type:text"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	UpdatedAt              time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for GORM
func (ScheduleByDate) TableName() string {
	return "schedules_by_date"
}

// NewScheduleByDate maps a record into its date-layout row
func NewScheduleByDate(r *entities.ScheduleRecord) *ScheduleByDate {
	return &ScheduleByDate{
		IdentityKey:            r.IdentityKey(),
		Date:                   r.Date,
		DepartureIATA:          r.DepartureIATA,
		ArrivalIATA:            r.ArrivalIATA,
		Route:                  r.Route,
		TimeSlot:               r.TimeSlot,
		FlightNumber:           r.FlightNumber,
		Carrier:                r.Carrier,
		CarrierIATA:            r.CarrierIATA,
		ScheduledDepartureTime: r.ScheduledDepartureTime,
		ScheduledArrivalTime:   r.ScheduledArrivalTime,
		ArrivalAirportName:     r.ArrivalAirportName,
		DepartureTerminal:      r.DepartureTerminal,
		Status:                 r.Status,
		AircraftModel:          r.AircraftModel,
	}
}

// ToRecord maps the row back into the domain record
func (s *ScheduleByDate) ToRecord() entities.ScheduleRecord {
	return entities.ScheduleRecord{
		DepartureIATA:          s.DepartureIATA,
		ArrivalIATA:            s.ArrivalIATA,
		Route:                  s.Route,
		Date:                   s.Date,
		TimeSlot:               s.TimeSlot,
		FlightNumber:           s.FlightNumber,
		Carrier:                s.Carrier,
		CarrierIATA:            s.CarrierIATA,
		ScheduledDepartureTime: s.ScheduledDepartureTime,
		ScheduledArrivalTime:   s.ScheduledArrivalTime,
		ArrivalAirportName:     s.ArrivalAirportName,
		DepartureTerminal:      s.DepartureTerminal,
		Status:                 s.Status,
		AircraftModel:          s.AircraftModel,
	}
}

// UpdatableColumns lists the columns replaced on an identity conflict
func (ScheduleByDate) UpdatableColumns() []string {
	return []string{
		"time_slot", "flight_number", "carrier", "carrier_iata", "scheduled_departure_time", "scheduled_arrival_time",
		"arrival_airport_name", "departure_terminal", "status", "aircraft_model", "updated_at",
	}
}
