package http

// SuccessResponse is the response body for a successful POST /upload.
type SuccessResponse struct {
	Success string `json:"success"`
}

// QueryResponse is the response body for a successful POST /query.
type QueryResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the response body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`

	// Documents is the number of stored chunks, or -1 when unknown.
	Documents int `json:"documents"`
}
