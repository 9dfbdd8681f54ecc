package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skyline/flightsync/internal/constants"
)

const departuresPayload = `{
  "departures": [
    {
      "number": "5J 560",
      "status": "Expected",
      "airline": {"name": "Cebu Pacific", "iata": "5J"},
      "aircraft": {"model": "Airbus A320"},
      "departure": {"scheduledTime": {"local": "2024-02-01 06:00+08:00"}, "terminal": "1"},
      "arrival": {"airport": {"iata": "MNL", "name": "Manila"}, "scheduledTime": {"local": "2024-02-01 07:20+08:00"}}
    },
    {
      "number": "PR 1846",
      "airline": {"name": "Philippine Airlines", "iata": "PR"},
      "movement": {"airport": {"iata": "DVO", "name": "Davao"}, "scheduledTime": {"local": "2024-02-01 09:10+08:00"}}
    },
    {
      "airline": {"name": "No Number Air"}
    }
  ]
}`

func newTestProvider(url string) *FlightDataProvider {
	return &FlightDataProvider{
		BaseURL: url,
		APIKey:  "test-key",
		APIHost: "test-host",
		Client:  &http.Client{},
	}
}

func TestFlightDataProvider_FetchDepartures_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/flights/airports/iata/CEB/2024-02-01T12:00/2024-02-01T23:59" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("direction") != "Departure" {
			t.Errorf("Expected direction=Departure, got %s", r.URL.Query().Get("direction"))
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-RapidAPI-Key"))
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(departuresPayload))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotEvening}

	raw, err := provider.FetchDepartures(context.Background(), unit)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(raw) != 3 {
		t.Fatalf("Expected 3 raw entries, got %d", len(raw))
	}
}

func TestFlightDataProvider_FetchDepartures_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}

	raw, err := provider.FetchDepartures(context.Background(), unit)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("Expected no entries, got %d", len(raw))
	}
}

func TestFlightDataProvider_FetchDepartures_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "Too many requests"}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}

	_, err := provider.FetchDepartures(context.Background(), unit)

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("Expected RateLimitError, got %v", err)
	}
	if rlErr.RetryAfter != 30*time.Second {
		t.Errorf("Expected retry after 30s, got %s", rlErr.RetryAfter)
	}
}

func TestFlightDataProvider_FetchDepartures_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}

	_, err := provider.FetchDepartures(context.Background(), unit)

	var pErr *ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if pErr.Code != constants.ErrCodeUpstreamError {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeUpstreamError, pErr.Code)
	}
	if pErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", pErr.StatusCode)
	}
}

func TestFlightDataProvider_FetchDepartures_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"departures": "nope"}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}

	_, err := provider.FetchDepartures(context.Background(), unit)

	var pErr *ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if pErr.Code != constants.ErrCodeMalformedPayload {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeMalformedPayload, pErr.Code)
	}
}

func TestFlightDataProvider_FetchDepartures_MissingAPIKey(t *testing.T) {
	provider := newTestProvider("http://127.0.0.1:0")
	provider.APIKey = ""
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: constants.TimeSlotMorning}

	_, err := provider.FetchDepartures(context.Background(), unit)

	var pErr *ProviderError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeInvalidAPIKey {
		t.Fatalf("Expected invalid API key error, got %v", err)
	}
}

func TestFlightDataProvider_FetchDepartures_InvalidSlot(t *testing.T) {
	provider := newTestProvider("http://127.0.0.1:0")
	unit := CollectionUnit{DepartureIATA: "CEB", Date: "2024-02-01", TimeSlot: "06-18"}

	_, err := provider.FetchDepartures(context.Background(), unit)

	var pErr *ProviderError
	if !errors.As(err, &pErr) || pErr.Code != constants.ErrCodeInvalidRequest {
		t.Fatalf("Expected invalid request error, got %v", err)
	}
}
