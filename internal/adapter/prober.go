package adapter

import (
	"context"
	"fmt"
	"log"

	"gridwarden/internal/domain"
	"gridwarden/internal/service"
)

// Prober measures a host independently and validates what it finds:
// an nmap reachability check gates an SSH collection pass, and the
// resulting telemetry goes through the normal admission path with the
// probed source.
type Prober struct {
	net       *NetProber
	collector Collector
	svc       *service.AdmissionService
	publisher EventPublisher
	sshPort   int
	sem       chan struct{}
}

// NewProber creates a probe pipeline around a reachability checker and
// an SSH collector. maxConcurrent bounds parallel probes.
func NewProber(net *NetProber, collector Collector, svc *service.AdmissionService, sshPort, maxConcurrent int) *Prober {
	if sshPort == 0 {
		sshPort = 22
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Prober{
		net:       net,
		collector: collector,
		svc:       svc,
		sshPort:   sshPort,
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// SetEventPublisher sets the event publisher for probe progress
func (p *Prober) SetEventPublisher(pub EventPublisher) {
	p.publisher = pub
}

// ProbeAndValidate measures one host and returns its admission report
func (p *Prober) ProbeAndValidate(ctx context.Context, host string, role domain.Role) (*domain.AdmissionReport, error) {
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	log.Printf("Probing %s as %s", host, role)

	reach, err := p.net.CheckHost(ctx, host)
	if err != nil {
		p.publishFailure(host, role, fmt.Sprintf("reachability check failed: %v", err))
		return nil, fmt.Errorf("reachability check failed: %w", err)
	}
	if !reach.Up {
		p.publishFailure(host, role, "host is down")
		return nil, fmt.Errorf("host %s is down", host)
	}
	if !reach.HasPort(p.sshPort) {
		p.publishFailure(host, role, fmt.Sprintf("ssh port %d closed", p.sshPort))
		return nil, fmt.Errorf("host %s: ssh port %d closed", host, p.sshPort)
	}

	tel, err := p.collector.Collect(ctx, host)
	if err != nil {
		p.publishFailure(host, role, fmt.Sprintf("collection failed: %v", err))
		return nil, fmt.Errorf("telemetry collection failed: %w", err)
	}

	report, err := p.svc.Validate(ctx, host, role, domain.SourceProbed, tel)
	if err != nil {
		p.publishFailure(host, role, err.Error())
		return nil, err
	}

	p.publish(string(service.EventProbeCompleted), report)
	return report, nil
}

func (p *Prober) publishFailure(host string, role domain.Role, reason string) {
	p.publish(string(service.EventProbeFailed), map[string]interface{}{
		"host":   host,
		"role":   role,
		"reason": reason,
	})
}

func (p *Prober) publish(eventType string, payload interface{}) {
	if p.publisher != nil {
		p.publisher.PublishProbeEvent(eventType, payload)
	}
}
