package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/young626-jang/ltv-flask/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// PingHealth adapts any Ping method, such as the cache's or the history store's.
type PingHealth func(ctx context.Context) error

// Probe implements the HealthService interface.
func (p PingHealth) Probe(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p(ctx)
}

// NamedProbe labels a dependency in the health report.
type NamedProbe struct {
	Name  string
	Probe HealthService
}

// CompositeHealth probes every dependency and reports all failures together.
type CompositeHealth []NamedProbe

// Probe implements the HealthService interface.
func (c CompositeHealth) Probe(ctx context.Context) error {
	var errs []error
	for _, p := range c {
		if p.Probe == nil {
			continue
		}
		if err := p.Probe.Probe(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}
