package adapter

import (
	"testing"

	"gridwarden/internal/domain"
)

func TestParseNproc(t *testing.T) {
	cores, err := parseNproc("16\n")
	if err != nil {
		t.Fatalf("parseNproc: %v", err)
	}
	if cores != 16 {
		t.Errorf("cores = %d, want 16", cores)
	}

	for _, bad := range []string{"", "zero", "-4"} {
		if _, err := parseNproc(bad); err == nil {
			t.Errorf("parseNproc(%q) should fail", bad)
		}
	}
}

func TestParseLscpu(t *testing.T) {
	output := `Architecture:        x86_64
CPU op-mode(s):      32-bit, 64-bit
CPU(s):              16
Model name:          AMD Ryzen 7 5800X 8-Core Processor
CPU MHz:             2200.000
CPU max MHz:         4850.0000
CPU min MHz:         2200.0000
`
	speed, arch, err := parseLscpu(output)
	if err != nil {
		t.Fatalf("parseLscpu: %v", err)
	}
	if speed != "4850MHz" {
		t.Errorf("speed = %q, want 4850MHz", speed)
	}
	if arch != "x86_64" {
		t.Errorf("arch = %q, want x86_64", arch)
	}

	// engine must be able to credit the speed against a GHz threshold
	q, err := domain.ParseQuantity(speed, domain.FamilyFrequency)
	if err != nil {
		t.Fatalf("ParseQuantity(%q): %v", speed, err)
	}
	if q.Magnitude != 4.85e9 {
		t.Errorf("magnitude = %v, want 4.85e9", q.Magnitude)
	}
}

func TestParseLscpuFallsBackToCurrentMHz(t *testing.T) {
	output := "Architecture: aarch64\nCPU MHz: 2400.000\n"
	speed, arch, err := parseLscpu(output)
	if err != nil {
		t.Fatal(err)
	}
	if speed != "2400MHz" {
		t.Errorf("speed = %q", speed)
	}
	if arch != "aarch64" {
		t.Errorf("arch = %q", arch)
	}
}

func TestParseFree(t *testing.T) {
	output := `              total        used        free      shared  buff/cache   available
Mem:    67108864000 12884901888  4294967296   536870912 49929994816 53687091200
Swap:    8589934592           0  8589934592
`
	ram, swap, err := parseFree(output)
	if err != nil {
		t.Fatalf("parseFree: %v", err)
	}
	if ram != "67108864000B" {
		t.Errorf("ram = %q", ram)
	}
	if swap != "8589934592B" {
		t.Errorf("swap = %q", swap)
	}

	if _, err := domain.ParseQuantity(ram, domain.FamilyBytes); err != nil {
		t.Errorf("ram should parse as bytes: %v", err)
	}

	if _, _, err := parseFree("garbage"); err == nil {
		t.Error("expected error for missing Mem line")
	}
}

func TestParseDfRoot(t *testing.T) {
	space, err := parseDfRoot("/dev/nvme0n1p2 1967869837312 23090752512 1844763084800 2% /\n")
	if err != nil {
		t.Fatalf("parseDfRoot: %v", err)
	}
	if space != "1844763084800B" {
		t.Errorf("space = %q", space)
	}

	if _, err := parseDfRoot("nonsense"); err == nil {
		t.Error("expected error for short df output")
	}
}

func TestParseRotational(t *testing.T) {
	tests := []struct {
		output  string
		want    string
		wantErr bool
	}{
		{"0\n", "ssd", false},
		{"1\n", "hdd", false},
		{"", "", true},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := parseRotational(tt.output)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRotational(%q) should fail", tt.output)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRotational(%q): %v", tt.output, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRotational(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestParseOSRelease(t *testing.T) {
	output := `NAME="Ubuntu"
VERSION="22.04.3 LTS (Jammy Jellyfish)"
ID=ubuntu
VERSION_ID="22.04"
PRETTY_NAME="Ubuntu 22.04.3 LTS"
`
	name, version, err := parseOSRelease(output)
	if err != nil {
		t.Fatalf("parseOSRelease: %v", err)
	}
	if name != "ubuntu" {
		t.Errorf("name = %q, want ubuntu", name)
	}
	if version != "22.04" {
		t.Errorf("version = %q, want 22.04", version)
	}

	if _, _, err := parseOSRelease(""); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestParseNvidiaSMI(t *testing.T) {
	gpu, err := parseNvidiaSMI("NVIDIA GeForce RTX 4090, 24564 MiB, 8.9\n")
	if err != nil {
		t.Fatalf("parseNvidiaSMI: %v", err)
	}
	if !gpu.Present {
		t.Error("gpu should be present")
	}
	if gpu.Name != "NVIDIA GeForce RTX 4090" {
		t.Errorf("name = %q", gpu.Name)
	}
	if gpu.VRAM != "24564MiB" {
		t.Errorf("vram = %q", gpu.VRAM)
	}
	if gpu.ComputeCapability != 8.9 {
		t.Errorf("compute capability = %v", gpu.ComputeCapability)
	}

	if _, err := domain.ParseQuantity(gpu.VRAM, domain.FamilyBytes); err != nil {
		t.Errorf("vram should parse as bytes: %v", err)
	}
}

func TestParseNvidiaSMIAbsentGPU(t *testing.T) {
	for _, output := range []string{"", "bash: nvidia-smi: command not found\n", "NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver.\n"} {
		gpu, err := parseNvidiaSMI(output)
		if err != nil {
			t.Errorf("parseNvidiaSMI(%q): %v", output, err)
			continue
		}
		if gpu.Present {
			t.Errorf("parseNvidiaSMI(%q) reported a GPU", output)
		}
	}
}

func TestParseNvidiaSMIMultiGPU(t *testing.T) {
	output := "NVIDIA A100-SXM4-80GB, 81920 MiB, 8.0\nNVIDIA A100-SXM4-80GB, 81920 MiB, 8.0\n"
	gpu, err := parseNvidiaSMI(output)
	if err != nil {
		t.Fatal(err)
	}
	if gpu.Name != "NVIDIA A100-SXM4-80GB" {
		t.Errorf("name = %q", gpu.Name)
	}
	if gpu.VRAM != "81920MiB" {
		t.Errorf("vram = %q", gpu.VRAM)
	}
}

func TestApplyCommandsBuildTelemetry(t *testing.T) {
	tel := &domain.TelemetrySpec{}

	if err := applyNproc("8\n", tel); err != nil {
		t.Fatal(err)
	}
	if err := applyLscpu("Architecture: x86_64\nCPU max MHz: 3600.0000\n", tel); err != nil {
		t.Fatal(err)
	}
	if err := applyNvidiaSMI("", tel); err != nil {
		t.Fatal(err)
	}

	if tel.CPU == nil || tel.CPU.Cores != 8 || tel.CPU.Speed != "3600MHz" || tel.CPU.Architecture != "x86_64" {
		t.Errorf("cpu telemetry = %+v", tel.CPU)
	}
	if tel.GPU == nil || tel.GPU.Present {
		t.Errorf("gpu telemetry = %+v", tel.GPU)
	}
}
