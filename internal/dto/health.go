package dto

// HealthResponse is the body of the health endpoints. Checks maps each
// dependency to "ok" or its error text.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
