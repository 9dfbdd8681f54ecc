package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"skyline/flightsync/internal/auth"
	"skyline/flightsync/internal/common"
	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/jobs"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/models/dtos"
	"skyline/flightsync/internal/models/entities"
	"skyline/flightsync/internal/providers"
)

// MonthCollector runs monthly collections and reports the latest run
type MonthCollector interface {
	CollectMonth(ctx context.Context, departureIATA, month string) (jobs.CollectionResult, error)
	Status() dtos.CollectionRunStatus
}

// UnitCollector collects a single unit outside the monthly batch
type UnitCollector interface {
	FetchAndStore(ctx context.Context, unit providers.CollectionUnit) (int, error)
}

// ScheduleQuerier reads stored schedules
type ScheduleQuerier interface {
	Query(ctx context.Context, params dtos.ScheduleQueryParams) ([]entities.ScheduleRecord, error)
}

// FlightsHandler serves the /flights endpoints
type FlightsHandler struct {
	months            MonthCollector
	units             UnitCollector
	query             ScheduleQuerier
	supportedAirports []string
}

func NewFlightsHandler(months MonthCollector, units UnitCollector, query ScheduleQuerier, supportedAirports []string) *FlightsHandler {
	return &FlightsHandler{
		months:            months,
		units:             units,
		query:             query,
		supportedAirports: supportedAirports,
	}
}

// CollectMonth handles POST /flights/collect-month
// @Summary Collect a month of departures
// @Tags Flights
// @Accept json
// @Produce json
// @Param body body dtos.CollectMonthRequest true "Departure airport and YYYY-MM month"
// @Success 200 {object} dtos.CollectMonthResponse
// @Failure 400,401,500 {object} dtos.FlightErrorResponse
// @Router /flights/collect-month [post]
func (h *FlightsHandler) CollectMonth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CollectMonthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondFlightError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.DepartureIATA) == "" || strings.TrimSpace(req.Month) == "" {
			common.RespondFlightError(w, "departureIata and month are required", http.StatusBadRequest)
			return
		}

		dep, err := h.checkAirport(req.DepartureIATA)
		if err != nil {
			common.RespondFlightError(w, err.Error(), http.StatusBadRequest)
			return
		}

		log := logging.WithRequest(auth.GetRequestID(r.Context()), principal(r), "collect-month")
		log.Infow("Monthly collection requested", "departure_iata", dep, "month", req.Month)

		result, err := h.months.CollectMonth(r.Context(), dep, req.Month)
		if err != nil {
			var vErr *entities.ValidationError
			if errors.As(err, &vErr) {
				common.RespondFlightError(w, vErr.Error(), http.StatusBadRequest)
				return
			}
			log.Errorw("Monthly collection failed", "departure_iata", dep, "month", req.Month, "error", err.Error())
			common.RespondFlightError(w, constants.MsgInternalError, http.StatusInternalServerError)
			return
		}

		common.WriteJSON(w, http.StatusOK, dtos.CollectMonthResponse{
			Success:       true,
			TotalSaved:    result.TotalSaved,
			TotalDays:     result.TotalDays,
			TotalAPICalls: result.TotalAPICalls,
			Message: fmt.Sprintf("Collected %d flights for %s in %s across %d days (%d API calls)",
				result.TotalSaved, dep, req.Month, result.TotalDays, result.TotalAPICalls),
		})
	}
}

// CollectUnit handles POST /flights/collect. Unlike the monthly run, provider failures
// are returned to the caller.
// @Summary Collect one airport, date and time slot
// @Tags Flights
// @Accept json
// @Produce json
// @Param body body dtos.CollectUnitRequest true "Collection unit"
// @Success 200 {object} dtos.CollectUnitResponse
// @Failure 400,401,429,500,502 {object} dtos.FlightErrorResponse
// @Router /flights/collect [post]
func (h *FlightsHandler) CollectUnit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.CollectUnitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondFlightError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.DepartureIATA == "" || req.Date == "" || req.TimeSlot == "" {
			common.RespondFlightError(w, "departureIata, date and timeSlot are required", http.StatusBadRequest)
			return
		}

		dep, err := h.checkAirport(req.DepartureIATA)
		if err != nil {
			common.RespondFlightError(w, err.Error(), http.StatusBadRequest)
			return
		}

		log := logging.WithRequest(auth.GetRequestID(r.Context()), principal(r), "collect")
		unit := providers.CollectionUnit{DepartureIATA: dep, Date: req.Date, TimeSlot: req.TimeSlot}

		saved, err := h.units.FetchAndStore(r.Context(), unit)
		if err != nil {
			var (
				vErr  *entities.ValidationError
				rlErr *providers.RateLimitError
				pErr  *providers.ProviderError
			)
			switch {
			case errors.As(err, &vErr):
				common.RespondFlightError(w, vErr.Error(), http.StatusBadRequest)
			case errors.As(err, &rlErr):
				if rlErr.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rlErr.RetryAfter.Seconds()))))
				}
				common.RespondFlightError(w, "Flight data provider rate limit reached", http.StatusTooManyRequests)
			case errors.As(err, &pErr):
				log.Warnw("Provider failure on ad-hoc collection", "code", pErr.Code, "error", err.Error())
				common.RespondFlightError(w, constants.GetErrorMessage(pErr.Code), http.StatusBadGateway)
			default:
				log.Errorw("Ad-hoc collection failed", "saved", saved, "error", err.Error())
				common.RespondFlightError(w, constants.MsgInternalError, http.StatusInternalServerError)
			}
			return
		}

		common.WriteJSON(w, http.StatusOK, dtos.CollectUnitResponse{
			Success: true,
			Saved:   saved,
			Message: fmt.Sprintf("Collected %d flights for %s on %s (%s)", saved, dep, req.Date, req.TimeSlot),
		})
	}
}

// GetSchedules handles GET /flights/schedules
// @Summary Query stored schedules
// @Tags Flights
// @Produce json
// @Param date query string false "YYYY-MM-DD"
// @Param year query int false "Year"
// @Param month query int false "Month 1-12"
// @Param route query string false "DEP-ARR, used together with year and month"
// @Param departureIata query string false "Departure airport filter for date and month queries"
// @Success 200 {object} dtos.SchedulesResponse
// @Failure 400,401,500 {object} dtos.FlightErrorResponse
// @Router /flights/schedules [get]
func (h *FlightsHandler) GetSchedules() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := dtos.ScheduleQueryParams{
			Date:          q.Get("date"),
			Year:          q.Get("year"),
			Month:         q.Get("month"),
			Route:         q.Get("route"),
			DepartureIATA: q.Get("departureIata"),
		}

		records, err := h.query.Query(r.Context(), params)
		if err != nil {
			var vErr *entities.ValidationError
			if errors.As(err, &vErr) {
				common.RespondFlightError(w, vErr.Error(), http.StatusBadRequest)
				return
			}

			var sErr *repositories.StoreError
			if errors.As(err, &sErr) {
				logging.Error("Schedule store read failed", "op", sErr.Op, "layout", sErr.Layout, "error", err.Error())
			} else {
				logging.Error("Schedule query failed", "error", err.Error())
			}
			common.RespondFlightError(w, constants.MsgInternalError, http.StatusInternalServerError)
			return
		}

		if records == nil {
			records = []entities.ScheduleRecord{}
		}
		common.WriteJSON(w, http.StatusOK, dtos.SchedulesResponse{
			Success: true,
			Flights: records,
			Count:   len(records),
		})
	}
}

// CollectionStatus handles GET /flights/collect/status
func (h *FlightsHandler) CollectionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Latest collection run", h.months.Status())
	}
}

// checkAirport normalizes a departure code and checks collection is enabled for it
func (h *FlightsHandler) checkAirport(code string) (string, error) {
	dep, err := entities.NormalizeIATA("departureIata", code)
	if err != nil {
		return "", err
	}
	if len(h.supportedAirports) > 0 && !common.ContainsCode(h.supportedAirports, dep) {
		return "", &entities.ValidationError{Field: "departureIata", Message: fmt.Sprintf("%s is not a supported departure airport", dep)}
	}
	return dep, nil
}

func principal(r *http.Request) string {
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		return claims.Source() + ":" + claims.UserID()
	}
	return ""
}
