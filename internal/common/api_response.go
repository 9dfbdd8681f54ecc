package common

import (
	"encoding/json"
	"net/http"
	"time"

	"skyline/flightsync/internal/constants"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/models/dtos"
)

// RespondSuccess sends a standardized JSON success response.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, message string, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusOk),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	}

	WriteJSON(w, code, response)
}

// RespondError sends a standardized JSON error response.
func RespondError(w http.ResponseWriter, initTime time.Time, err error, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	msg := message
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}

	response := dtos.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      msg,
		ResponseTime: GetResponseTime(initTime),
	}

	WriteJSON(w, code, response)
}

// RespondFlightError writes the {success:false,error} body used by the flight endpoints
func RespondFlightError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, statusCode, dtos.FlightErrorResponse{Success: false, Error: message})
}

// WriteJSON marshals body and writes it to the HTTP response.
func WriteJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
