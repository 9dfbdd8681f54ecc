package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() ScheduleRecord {
	return ScheduleRecord{
		DepartureIATA: "ceb",
		ArrivalIATA:   " mnl ",
		Date:          "2024-02-10",
		TimeSlot:      "00-12",
		FlightNumber:  "5J 560",
		Carrier:       "Cebu Pacific",
	}
}

func TestNewScheduleRecord_NormalizesAndDerivesRoute(t *testing.T) {
	rec, err := NewScheduleRecord(validRecord())
	require.NoError(t, err)

	assert.Equal(t, "CEB", rec.DepartureIATA)
	assert.Equal(t, "MNL", rec.ArrivalIATA)
	assert.Equal(t, "CEB-MNL", rec.Route)
	assert.Equal(t, "CEB_MNL_5J560_2024-02-10", rec.IdentityKey())

	year, month := rec.YearMonth()
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, month)
}

func TestNewScheduleRecord_IgnoresSuppliedRoute(t *testing.T) {
	in := validRecord()
	in.Route = "XXX-YYY"

	rec, err := NewScheduleRecord(in)
	require.NoError(t, err)
	assert.Equal(t, "CEB-MNL", rec.Route)
}

func TestNewScheduleRecord_Rejects(t *testing.T) {
	cases := map[string]func(r *ScheduleRecord){
		"short departure": func(r *ScheduleRecord) { r.DepartureIATA = "CE" },
		"numeric arrival": func(r *ScheduleRecord) { r.ArrivalIATA = "M1L" },
		"bad date":        func(r *ScheduleRecord) { r.Date = "2024-02-30" },
		"bad slot":        func(r *ScheduleRecord) { r.TimeSlot = "06-18" },
		"no flight":       func(r *ScheduleRecord) { r.FlightNumber = "  " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRecord()
			mutate(&in)

			_, err := NewScheduleRecord(in)
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
		})
	}
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, month)

	for _, bad := range []string{"2024-13", "2024-00", "2024-2", "24-02", "2024/02", ""} {
		_, _, err := ParseMonth(bad)
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr), "expected ValidationError for %q", bad)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 28, DaysInMonth(2023, 2))
	assert.Equal(t, 31, DaysInMonth(2024, 12))
	assert.Equal(t, 30, DaysInMonth(2024, 4))
}

func TestMonthDateRange(t *testing.T) {
	first, last := MonthDateRange(2024, 2)
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}

func TestValidateYearMonth(t *testing.T) {
	_, _, err := ValidateYearMonth("2024", "13")
	assert.Error(t, err)

	_, _, err = ValidateYearMonth("abc", "2")
	assert.Error(t, err)

	year, month, err := ValidateYearMonth("2024", "2")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 2, month)
}

func TestNormalizeRoute(t *testing.T) {
	r, err := NormalizeRoute("ceb-mnl")
	require.NoError(t, err)
	assert.Equal(t, "CEB-MNL", r)

	_, err = NormalizeRoute("CEBMNL")
	assert.Error(t, err)
}

func TestSortRecords(t *testing.T) {
	records := []ScheduleRecord{
		{Date: "2024-02-02", FlightNumber: "A1"},
		{Date: "2024-02-01", ScheduledDepartureTime: "2024-02-01 13:00+08:00", FlightNumber: "B1"},
		{Date: "2024-02-01", ScheduledDepartureTime: "2024-02-01 06:00+08:00", FlightNumber: "C1"},
	}

	SortRecords(records)

	assert.Equal(t, "C1", records[0].FlightNumber)
	assert.Equal(t, "B1", records[1].FlightNumber)
	assert.Equal(t, "A1", records[2].FlightNumber)
}
