package adapter

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

// NetProber checks host reachability and open ports with nmap
type NetProber struct {
	portRange         string
	timeout           time.Duration
	skipHostDiscovery bool
}

// NetProbeOption is a functional option for configuring NetProber
type NetProbeOption func(*NetProber)

// WithPortRange sets the ports to check
// Format: "22,4444,8091" or "1-1000" or "22,80-443,8091"
func WithPortRange(ports string) NetProbeOption {
	return func(p *NetProber) {
		if validated, err := parsePorts(ports); err == nil {
			p.portRange = validated
		}
	}
}

// WithProbeTimeout sets the timeout for the whole host check
func WithProbeTimeout(d time.Duration) NetProbeOption {
	return func(p *NetProber) {
		p.timeout = d
	}
}

// WithSkipHostDiscovery treats the host as online without pinging (-Pn)
// Useful for networks that block ICMP
func WithSkipHostDiscovery(skip bool) NetProbeOption {
	return func(p *NetProber) {
		p.skipHostDiscovery = skip
	}
}

// NewNetProber creates an nmap-based reachability checker
func NewNetProber(opts ...NetProbeOption) *NetProber {
	prober := &NetProber{
		portRange: "22,4444,8091,27015",
		timeout:   2 * time.Minute,
	}

	for _, opt := range opts {
		opt(prober)
	}

	return prober
}

// CheckHost scans one host and reports its open ports
func (p *NetProber) CheckHost(ctx context.Context, host string) (*Reachability, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(host),
		nmap.WithPorts(p.portRange),
	}
	if p.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	log.Printf("Net probe: scanning %s (ports %s)", host, p.portRange)
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Net probe: warnings for %s: %v", host, *warnings)
	}

	return p.processResult(host, result), nil
}

func (p *NetProber) processResult(host string, result *nmap.Run) *Reachability {
	reach := &Reachability{Host: host}
	if result == nil {
		return reach
	}

	for _, h := range result.Hosts {
		if h.Status.State != "up" {
			continue
		}
		reach.Up = true
		for _, port := range h.Ports {
			if port.State.State == "open" {
				reach.OpenPorts = append(reach.OpenPorts, int(port.ID))
			}
		}
	}

	return reach
}

// parsePorts validates a port range string in nmap format
func parsePorts(portRange string) (string, error) {
	parts := strings.Split(portRange, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", rangeParts[1])
			}
		} else {
			port, err := strconv.Atoi(part)
			if err != nil || port < 1 || port > 65535 {
				return "", fmt.Errorf("invalid port number: %s", part)
			}
		}
	}
	return portRange, nil
}
