package dtos

import "skyline/flightsync/internal/models/entities"

// CollectMonthRequest is the body of POST /flights/collect-month
type CollectMonthRequest struct {
	DepartureIATA string `json:"departureIata"`
	Month         string `json:"month"`
}

// CollectMonthResponse reports the totals of one monthly collection run
type CollectMonthResponse struct {
	Success       bool   `json:"success"`
	TotalSaved    int    `json:"totalSaved"`
	TotalDays     int    `json:"totalDays"`
	TotalAPICalls int    `json:"totalApiCalls"`
	Message       string `json:"message"`
}

// CollectUnitRequest is the body of POST /flights/collect
type CollectUnitRequest struct {
	DepartureIATA string `json:"departureIata"`
	Date          string `json:"date"`
	TimeSlot      string `json:"timeSlot"`
}

// CollectUnitResponse reports one ad-hoc collection unit
type CollectUnitResponse struct {
	Success bool   `json:"success"`
	Saved   int    `json:"saved"`
	Message string `json:"message"`
}

// SchedulesResponse is returned by GET /flights/schedules
type SchedulesResponse struct {
	Success bool                      `json:"success"`
	Flights []entities.ScheduleRecord `json:"flights"`
	Count   int                       `json:"count"`
}

// FlightErrorResponse is the failure body of the flight endpoints
type FlightErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ScheduleQueryParams carries the raw query-string values of a schedules lookup
type ScheduleQueryParams struct {
	Date          string
	Year          string
	Month         string
	Route         string
	DepartureIATA string
}

// CollectionRunStatus describes the latest monthly collection run
type CollectionRunStatus struct {
	Running       bool     `json:"running"`
	DepartureIATA string   `json:"departure_iata,omitempty"`
	Month         string   `json:"month,omitempty"`
	StartedAt     string   `json:"started_at,omitempty"`
	CompletedAt   string   `json:"completed_at,omitempty"`
	TotalSaved    int      `json:"total_saved"`
	TotalDays     int      `json:"total_days"`
	TotalAPICalls int      `json:"total_api_calls"`
	FailedDates   []string `json:"failed_dates,omitempty"`
	Error         string   `json:"error,omitempty"`
}
