package services

import (
	"context"
	"strings"

	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/db/repositories"
	"skyline/flightsync/internal/models/dtos"
	"skyline/flightsync/internal/models/entities"
)

// ScheduleQueryService picks the store read path from the parameters present
type ScheduleQueryService struct {
	store repositories.ScheduleStore
}

func NewScheduleQueryService(store repositories.ScheduleStore) *ScheduleQueryService {
	return &ScheduleQueryService{store: store}
}

// Query dispatches in precedence order: route+year+month, then date, then year+month.
// Every parameter present is validated before the store is touched.
func (s *ScheduleQueryService) Query(ctx context.Context, params dtos.ScheduleQueryParams) ([]entities.ScheduleRecord, error) {
	date := strings.TrimSpace(params.Date)
	route := strings.TrimSpace(params.Route)
	yearStr := strings.TrimSpace(params.Year)
	monthStr := strings.TrimSpace(params.Month)

	var (
		year, month int
		err         error
	)
	if yearStr != "" {
		if year, err = entities.ParseYear(yearStr); err != nil {
			return nil, err
		}
	}
	if monthStr != "" {
		if month, err = entities.ParseMonthNumber(monthStr); err != nil {
			return nil, err
		}
	}
	if date != "" {
		if _, err := entities.ParseDate(date); err != nil {
			return nil, err
		}
	}
	hasMonth := yearStr != "" && monthStr != ""

	departureIATA := ""
	if dep := strings.TrimSpace(params.DepartureIATA); dep != "" {
		departureIATA, err = entities.NormalizeIATA("departureIata", dep)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case route != "" && hasMonth:
		normalized, err := entities.NormalizeRoute(route)
		if err != nil {
			return nil, err
		}
		return s.store.GetByRouteAndMonth(ctx, normalized, year, month)

	case date != "":
		return s.store.GetByDate(ctx, date, departureIATA)

	case hasMonth:
		return s.store.GetByMonth(ctx, year, month, departureIATA)

	default:
		return nil, &entities.ValidationError{Message: constants.MsgDateOrMonthRequired}
	}
}
