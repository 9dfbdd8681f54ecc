package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyline/flightsync/internal/constants"
)

func TestMapDepartures(t *testing.T) {
	raw, err := decodeDepartures([]byte(departuresPayload))
	require.NoError(t, err)

	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}
	result := MapDepartures(unit, raw)

	require.Len(t, result.Records, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Index)

	first := result.Records[0]
	assert.Equal(t, "CEB", first.DepartureIATA)
	assert.Equal(t, "MNL", first.ArrivalIATA)
	assert.Equal(t, "CEB-MNL", first.Route)
	assert.Equal(t, "2024-02-01", first.Date)
	assert.Equal(t, constants.TimeSlotMorning, first.TimeSlot)
	assert.Equal(t, "5J 560", first.FlightNumber)
	assert.Equal(t, "Cebu Pacific", first.Carrier)
	assert.Equal(t, "5J", first.CarrierIATA)
	assert.Equal(t, "2024-02-01 06:00+08:00", first.ScheduledDepartureTime)
	assert.Equal(t, "2024-02-01 07:20+08:00", first.ScheduledArrivalTime)
	assert.Equal(t, "Airbus A320", first.AircraftModel)
	assert.Equal(t, "1", first.DepartureTerminal)

	second := result.Records[1]
	assert.Equal(t, "DVO", second.ArrivalIATA)
	assert.Equal(t, "2024-02-01 09:10+08:00", second.ScheduledDepartureTime)
	assert.Empty(t, second.ScheduledArrivalTime)
}

func TestMapDepartures_RejectsBadArrivalCode(t *testing.T) {
	raw := []RawFlight{{
		"number":  "XX 1",
		"arrival": map[string]interface{}{"airport": map[string]interface{}{"iata": "MANILA"}},
	}}

	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}
	result := MapDepartures(unit, raw)

	assert.Empty(t, result.Records)
	assert.Len(t, result.Skipped, 1)
}
