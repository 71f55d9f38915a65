package dto

import "time"

type ServiceStatus struct {
	Model bool `json:"model"`
	Store bool `json:"store"`
}

// HealthResponse always ships with HTTP 200 so infrastructure liveness
// checks do not flap on a model-endpoint outage.
type HealthResponse struct {
	Status    string        `json:"status"` // "healthy" or "degraded"
	Timestamp time.Time     `json:"timestamp"`
	Services  ServiceStatus `json:"services"`
	Models    []string      `json:"models"`
}
