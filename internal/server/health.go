package server

import (
	"context"

	"github.com/anusha/bdaycal/internal/store"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// TraceHealthService verifies trace-store connectivity as part of health checks.
type TraceHealthService struct {
	Store store.TraceStore
}

// Probe implements the HealthService interface.
func (s TraceHealthService) Probe(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Ping(ctx)
}
