package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/logging"
)

// FlightDataProvider calls an AeroDataBox-style airport departures endpoint. The
// endpoint serves at most a 12 hour window, which is why a day is split in two slots.
type FlightDataProvider struct {
	BaseURL string
	APIKey  string
	APIHost string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewFlightDataProvider creates a provider client. A nil limiter disables client-side pacing.
func NewFlightDataProvider(baseURL, apiKey, apiHost string, timeout time.Duration, limiter *rate.Limiter) *FlightDataProvider {
	if baseURL == "" {
		baseURL = "https://aerodatabox.p.rapidapi.com"
	}
	return &FlightDataProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		APIHost: apiHost,
		Client: &http.Client{
			Timeout: timeout,
		},
		Limiter: limiter,
	}
}

// GetProviderType returns the provider type identifier
func (p *FlightDataProvider) GetProviderType() string {
	return "aerodatabox_fids"
}

// FetchDepartures fetches the departures of one airport within one half-day window
func (p *FlightDataProvider) FetchDepartures(ctx context.Context, unit CollectionUnit) ([]RawFlight, error) {
	from, to, err := slotWindow(unit.Date, unit.TimeSlot)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequest),
			Err:     err,
		}
	}

	endpoint := fmt.Sprintf("/flights/airports/iata/%s/%s/%s", url.PathEscape(unit.DepartureIATA), from, to)
	query := url.Values{}
	query.Set("direction", "Departure")
	query.Set("withLeg", "true")
	query.Set("withCancelled", "true")
	query.Set("withCodeshared", "false")
	query.Set("withCargo", "false")
	query.Set("withPrivate", "false")

	body, status, err := p.doGET(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent || len(body) == 0 {
		return []RawFlight{}, nil
	}

	return decodeDepartures(body)
}

// slotWindow converts a date and time slot into the provider's local from/to timestamps
func slotWindow(date, slot string) (string, string, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", "", fmt.Errorf("invalid date %q", date)
	}
	switch slot {
	case constants.TimeSlotMorning:
		return date + "T00:00", date + "T11:59", nil
	case constants.TimeSlotEvening:
		return date + "T12:00", date + "T23:59", nil
	default:
		return "", "", fmt.Errorf("invalid time slot %q", slot)
	}
}

// decodeDepartures reads the "departures" array out of an otherwise untyped payload
func decodeDepartures(body []byte) ([]RawFlight, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: constants.GetErrorMessage(constants.ErrCodeMalformedPayload),
			Details: truncate(string(body), 512),
			Err:     err,
		}
	}

	raw, ok := payload["departures"]
	if !ok || raw == nil {
		return []RawFlight{}, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, &ProviderError{
			Code:    constants.ErrCodeMalformedPayload,
			Message: "departures is not a list",
			Details: truncate(string(body), 512),
		}
	}

	flights := make([]RawFlight, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			logging.Warn("Skipping non-object departure entry", "index", i)
			continue
		}
		flights = append(flights, entry)
	}
	return flights, nil
}

// doGET performs a GET request with provider authentication
func (p *FlightDataProvider) doGET(ctx context.Context, endpoint string) ([]byte, int, error) {
	if p.APIKey == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "PROVIDER_API_KEY environment variable is not set",
		}
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, 0, &ProviderError{
				Code:    constants.ErrCodeNetworkError,
				Message: "Provider call cancelled while waiting for rate limiter",
				Err:     err,
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint, nil)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("X-RapidAPI-Key", p.APIKey)
	if p.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", p.APIHost)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, resp.StatusCode, &ProviderError{
			Code:       constants.ErrCodeNetworkError,
			Message:    "Failed to read response body",
			StatusCode: resp.StatusCode,
			Err:        readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, p.buildHTTPError(resp, endpoint, string(bodyBytes))
	}

	return bodyBytes, resp.StatusCode, nil
}

// buildHTTPError creates the appropriate error for a non-2xx status code
func (p *FlightDataProvider) buildHTTPError(resp *http.Response, endpoint string, body string) error {
	details := truncate(body, 512)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Details:    details,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidAPIKey,
			Message:    fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Details:    details,
			StatusCode: resp.StatusCode,
		}
	case http.StatusNotFound:
		return &ProviderError{
			Code:       constants.ErrCodeNotFound,
			Message:    fmt.Sprintf("Resource not found: %s", endpoint),
			Details:    details,
			StatusCode: resp.StatusCode,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:       constants.ErrCodeInvalidRequest,
			Message:    fmt.Sprintf("Bad request to %s", endpoint),
			Details:    details,
			StatusCode: resp.StatusCode,
		}
	default:
		return &ProviderError{
			Code:       constants.ErrCodeUpstreamError,
			Message:    fmt.Sprintf("HTTP %d from %s", resp.StatusCode, endpoint),
			Details:    details,
			StatusCode: resp.StatusCode,
		}
	}
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
