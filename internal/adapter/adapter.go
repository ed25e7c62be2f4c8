// Package adapter integrates external measurement tools: nmap for
// reachability and port checks, SSH for collecting hardware facts from
// live hosts. Adapters produce telemetry; the engine judges it.
package adapter

import (
	"context"

	"gridwarden/internal/domain"
)

// Collector gathers telemetry from a live host
type Collector interface {
	Collect(ctx context.Context, host string) (*domain.TelemetrySpec, error)
}

// Reachability is the outcome of a network-level host check
type Reachability struct {
	Host      string `json:"host"`
	Up        bool   `json:"up"`
	OpenPorts []int  `json:"open_ports,omitempty"`
}

// HasPort reports whether a port was found open
func (r *Reachability) HasPort(port int) bool {
	for _, p := range r.OpenPorts {
		if p == port {
			return true
		}
	}
	return false
}

// EventPublisher allows adapters to publish progress events
type EventPublisher interface {
	PublishProbeEvent(eventType string, payload interface{})
}
