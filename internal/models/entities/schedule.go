package entities

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"skyline/flightsync/internal/constants"
)

var (
	iataPattern  = regexp.MustCompile(`^[A-Z]{3}$`)
	monthPattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
	routePattern = regexp.MustCompile(`^[A-Z]{3}-[A-Z]{3}$`)
)

// ValidationError reports malformed input. It never carries side effects.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ScheduleRecord is one scheduled flight occurrence collected from the provider
type ScheduleRecord struct {
	DepartureIATA          string `json:"departureIata" bson:"departureIata"`
	ArrivalIATA            string `json:"arrivalIata" bson:"arrivalIata"`
	Route                  string `json:"route" bson:"route"`
	Date                   string `json:"date" bson:"date"`
	TimeSlot               string `json:"timeSlot" bson:"timeSlot"`
	FlightNumber           string `json:"flightNumber" bson:"flightNumber"`
	Carrier                string `json:"carrier" bson:"carrier"`
	CarrierIATA            string `json:"carrierIata,omitempty" bson:"carrierIata,omitempty"`
	ScheduledDepartureTime string `json:"scheduledDepartureTime" bson:"scheduledDepartureTime"`
	ScheduledArrivalTime   string `json:"scheduledArrivalTime" bson:"scheduledArrivalTime"`
	ArrivalAirportName     string `json:"arrivalAirportName,omitempty" bson:"arrivalAirportName,omitempty"`
	DepartureTerminal      string `json:"departureTerminal,omitempty" bson:"departureTerminal,omitempty"`
	Status                 string `json:"status,omitempty" bson:"status,omitempty"`
	AircraftModel          string `json:"aircraftModel,omitempty" bson:"aircraftModel,omitempty"`
}

// NewScheduleRecord normalizes and validates a record, deriving its route.
// Descriptive fields are taken verbatim from the input.
func NewScheduleRecord(r ScheduleRecord) (*ScheduleRecord, error) {
	dep, err := NormalizeIATA("departureIata", r.DepartureIATA)
	if err != nil {
		return nil, err
	}
	arr, err := NormalizeIATA("arrivalIata", r.ArrivalIATA)
	if err != nil {
		return nil, err
	}
	if _, err := ParseDate(r.Date); err != nil {
		return nil, err
	}
	if err := ValidateTimeSlot(r.TimeSlot); err != nil {
		return nil, err
	}
	if strings.TrimSpace(r.FlightNumber) == "" {
		return nil, &ValidationError{Field: "flightNumber", Message: "must not be empty"}
	}

	r.DepartureIATA = dep
	r.ArrivalIATA = arr
	r.Route = RouteOf(dep, arr)
	r.FlightNumber = strings.TrimSpace(r.FlightNumber)
	return &r, nil
}

// IdentityKey is the deduplication key: departure, arrival, flight number and date.
// Spaces are dropped from the flight number so "5J 560" and "5J560" collide.
func (r *ScheduleRecord) IdentityKey() string {
	flight := strings.ToUpper(strings.ReplaceAll(r.FlightNumber, " ", ""))
	flight = strings.NewReplacer(".", "", "$", "").Replace(flight)
	return fmt.Sprintf("%s_%s_%s_%s", r.DepartureIATA, r.ArrivalIATA, flight, r.Date)
}

// YearMonth returns the year and month derived from the record date
func (r *ScheduleRecord) YearMonth() (int, int) {
	d, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return 0, 0
	}
	return d.Year(), int(d.Month())
}

// SameContent reports whether two records carry identical field values
func (r *ScheduleRecord) SameContent(other *ScheduleRecord) bool {
	return other != nil && *r == *other
}

// RouteOf composes the route key from a departure and arrival code
func RouteOf(departureIATA, arrivalIATA string) string {
	return departureIATA + "-" + arrivalIATA
}

// NormalizeIATA uppercases an airport code and checks it is three letters
func NormalizeIATA(field, code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !iataPattern.MatchString(c) {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("%q is not a 3-letter IATA code", code)}
	}
	return c, nil
}

// NormalizeRoute validates a "DEP-ARR" route string
func NormalizeRoute(route string) (string, error) {
	r := strings.ToUpper(strings.TrimSpace(route))
	if !routePattern.MatchString(r) {
		return "", &ValidationError{Field: "route", Message: fmt.Sprintf("%q must look like CEB-MNL", route)}
	}
	return r, nil
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", date)}
	}
	return d, nil
}

// ValidateTimeSlot checks the slot is one of the two half-day windows
func ValidateTimeSlot(slot string) error {
	for _, s := range constants.TimeSlots {
		if slot == s {
			return nil
		}
	}
	return &ValidationError{Field: "timeSlot", Message: fmt.Sprintf("%q must be one of %v", slot, constants.TimeSlots)}
}

// ParseMonth parses a YYYY-MM string into year and month
func ParseMonth(month string) (int, int, error) {
	m := monthPattern.FindStringSubmatch(month)
	if m == nil {
		return 0, 0, &ValidationError{Field: "month", Message: fmt.Sprintf("%q must match YYYY-MM", month)}
	}
	year, _ := strconv.Atoi(m[1])
	mon, _ := strconv.Atoi(m[2])
	return year, mon, nil
}

// ValidateYearMonth checks year/month query values given as strings
func ValidateYearMonth(yearStr, monthStr string) (int, int, error) {
	year, err := ParseYear(yearStr)
	if err != nil {
		return 0, 0, err
	}
	month, err := ParseMonthNumber(monthStr)
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// ParseYear parses a positive integer year
func ParseYear(yearStr string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil || year < 1 {
		return 0, &ValidationError{Field: "year", Message: fmt.Sprintf("%q is not a valid year", yearStr)}
	}
	return year, nil
}

// ParseMonthNumber parses a month number in 1..12
func ParseMonthNumber(monthStr string) (int, error) {
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return 0, &ValidationError{Field: "month", Message: fmt.Sprintf("%q must be an integer between 1 and 12", monthStr)}
	}
	return month, nil
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDateRange returns the first and last YYYY-MM-DD dates of a month
func MonthDateRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.Month(month), DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	return first.Format(time.DateOnly), last.Format(time.DateOnly)
}

// FormatDate builds a YYYY-MM-DD string
func FormatDate(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
}

// SortRecords orders records by date, scheduled departure, then flight number
func SortRecords(records []ScheduleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ScheduledDepartureTime != b.ScheduledDepartureTime {
			return a.ScheduledDepartureTime < b.ScheduledDepartureTime
		}
		if a.FlightNumber != b.FlightNumber {
			return a.FlightNumber < b.FlightNumber
		}
		return a.ArrivalIATA < b.ArrivalIATA
	})
}
