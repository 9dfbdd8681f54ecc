package dtos

// APIResponse is the envelope of the service endpoints that are not flight endpoints
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}
