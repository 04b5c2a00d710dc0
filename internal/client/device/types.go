package device

// Reading is the JSON body the device posts to /api/sensor/data.
type Reading struct {
	PH          float64 `json:"ph"`
	Temperature float64 `json:"temperature"`
	TDS         float64 `json:"tds"`
}

// IngestResponse is the server's answer to an accepted reading.
type IngestResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	AlertsCount int    `json:"alerts_count"`
}

// ErrorResponse is the JSON body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// IsHealthy reports whether the server and its database are up.
func (h *HealthResponse) IsHealthy() bool {
	return h != nil && h.Status == "ok"
}
