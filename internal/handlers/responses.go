package handlers

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StatusResponse acknowledges a request that returns no data.
type StatusResponse struct {
	Status string `json:"status"`
}

var (
	statusSuccess = StatusResponse{Status: "success"}
	statusOK      = StatusResponse{Status: "ok"}
)
