package dto

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PartialFailureResponse reports an ingest that committed to the vector
// store but failed the graph stage. It is deliberately distinct from both
// a success payload and a plain error payload.
type PartialFailureResponse struct {
	Error           string `json:"error"`
	ID              string `json:"id"`
	Stage           string `json:"stage"`
	VectorCommitted bool   `json:"vector_committed"`
	Message         string `json:"message,omitempty"`
}
