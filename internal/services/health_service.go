package services

import (
	"context"
	"time"
)

// HealthService reports basic liveness information.
type HealthService struct {
	version   string
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService(version string) *HealthService {
	return &HealthService{
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthCheck returns the service status payload.
func (s *HealthService) HealthCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "ok",
		"version":   s.version,
		"uptime":    time.Since(s.startedAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}

// Version returns the version payload.
func (s *HealthService) Version() map[string]string {
	return map[string]string{"version": s.version}
}
