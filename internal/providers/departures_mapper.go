package providers

import (
	"fmt"
	"strings"

	"skyline/flightsync/internal/models/entities"
)

// MappingResult holds the records mapped from one provider response plus the entries
// that could not be turned into a record.
type MappingResult struct {
	Records []entities.ScheduleRecord
	Skipped []SkippedFlight
}

// SkippedFlight explains why one raw entry was dropped
type SkippedFlight struct {
	Index  int
	Reason string
}

// MapDepartures maps raw provider entries into schedule records for one collection unit.
// The provider's field layout only matters here.
func MapDepartures(unit CollectionUnit, raw []RawFlight) MappingResult {
	result := MappingResult{Records: make([]entities.ScheduleRecord, 0, len(raw))}

	for i, entry := range raw {
		rec, err := mapDeparture(unit, entry)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedFlight{Index: i, Reason: err.Error()})
			continue
		}
		result.Records = append(result.Records, *rec)
	}
	return result
}

func mapDeparture(unit CollectionUnit, entry RawFlight) (*entities.ScheduleRecord, error) {
	number := stringAt(entry, "number")
	if number == "" {
		return nil, fmt.Errorf("missing flight number")
	}

	// withLeg=true payloads carry departure/arrival legs; movement is the compact form
	arrivalIATA := firstNonEmpty(
		stringAt(entry, "arrival", "airport", "iata"),
		stringAt(entry, "movement", "airport", "iata"),
	)
	if arrivalIATA == "" {
		return nil, fmt.Errorf("flight %s has no arrival airport", number)
	}

	rec := entities.ScheduleRecord{
		DepartureIATA: unit.DepartureIATA,
		ArrivalIATA:   arrivalIATA,
		Date:          unit.Date,
		TimeSlot:      unit.TimeSlot,
		FlightNumber:  number,
		Carrier:       stringAt(entry, "airline", "name"),
		CarrierIATA:   stringAt(entry, "airline", "iata"),
		ScheduledDepartureTime: firstNonEmpty(
			stringAt(entry, "departure", "scheduledTime", "local"),
			stringAt(entry, "departure", "scheduledTimeLocal"),
			stringAt(entry, "movement", "scheduledTime", "local"),
		),
		ScheduledArrivalTime: firstNonEmpty(
			stringAt(entry, "arrival", "scheduledTime", "local"),
			stringAt(entry, "arrival", "scheduledTimeLocal"),
		),
		ArrivalAirportName: firstNonEmpty(
			stringAt(entry, "arrival", "airport", "name"),
			stringAt(entry, "movement", "airport", "name"),
		),
		DepartureTerminal: stringAt(entry, "departure", "terminal"),
		Status:            stringAt(entry, "status"),
		AircraftModel:     stringAt(entry, "aircraft", "model"),
	}

	return entities.NewScheduleRecord(rec)
}

// stringAt walks nested objects and returns the trimmed string at the path, or ""
func stringAt(m map[string]interface{}, path ...string) string {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur, ok = obj[key]
		if !ok {
			return ""
		}
	}

	switch v := cur.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
