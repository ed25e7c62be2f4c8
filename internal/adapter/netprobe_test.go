package adapter

import "testing"

func TestParsePorts(t *testing.T) {
	valid := []string{"22", "22,4444,8091", "1-1000", "22,80-443,8091"}
	for _, ports := range valid {
		if _, err := parsePorts(ports); err != nil {
			t.Errorf("parsePorts(%q): %v", ports, err)
		}
	}

	invalid := []string{"", "ssh", "0", "70000", "443-80", "22,,80"}
	for _, ports := range invalid {
		if _, err := parsePorts(ports); err == nil {
			t.Errorf("parsePorts(%q) should fail", ports)
		}
	}
}

func TestReachabilityHasPort(t *testing.T) {
	reach := &Reachability{Host: "10.0.0.5", Up: true, OpenPorts: []int{22, 8091}}
	if !reach.HasPort(22) {
		t.Error("port 22 should be open")
	}
	if reach.HasPort(4444) {
		t.Error("port 4444 should be closed")
	}
}

func TestNetProberOptions(t *testing.T) {
	p := NewNetProber(WithPortRange("22,8091"), WithSkipHostDiscovery(true))
	if p.portRange != "22,8091" {
		t.Errorf("portRange = %q", p.portRange)
	}
	if !p.skipHostDiscovery {
		t.Error("skipHostDiscovery should be set")
	}

	// invalid ranges keep the default
	p = NewNetProber(WithPortRange("not-ports"))
	if p.portRange != "22,4444,8091,27015" {
		t.Errorf("portRange = %q, want default", p.portRange)
	}
}
