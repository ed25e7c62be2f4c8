package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"gridwarden/internal/domain"
)

// FactCommand defines a command to run over SSH for telemetry gathering
type FactCommand struct {
	Name    string                                        // e.g., "cpu_cores"
	Command string                                        // e.g., "nproc"
	Apply   func(output string, tel *domain.TelemetrySpec) error // Fold command output into telemetry
}

// DefaultFactCommands are the standard telemetry-gathering commands
var DefaultFactCommands = []FactCommand{
	{
		Name:    "cpu_cores",
		Command: "nproc",
		Apply:   applyNproc,
	},
	{
		Name:    "cpu_info",
		Command: "lscpu 2>/dev/null",
		Apply:   applyLscpu,
	},
	{
		Name:    "memory",
		Command: "free -b",
		Apply:   applyFree,
	},
	{
		Name:    "storage_space",
		Command: "df -B1 / | tail -1",
		Apply:   applyDfRoot,
	},
	{
		Name:    "storage_type",
		Command: "lsblk -dno rota $(df --output=source / | tail -1) 2>/dev/null",
		Apply:   applyRotational,
	},
	{
		Name:    "os_release",
		Command: "cat /etc/os-release 2>/dev/null",
		Apply:   applyOSRelease,
	},
	{
		Name:    "gpu",
		Command: "nvidia-smi --query-gpu=name,memory.total,compute_cap --format=csv,noheader 2>/dev/null",
		Apply:   applyNvidiaSMI,
	},
}

// applyNproc records the core count from nproc
func applyNproc(output string, tel *domain.TelemetrySpec) error {
	cores, err := parseNproc(output)
	if err != nil {
		return err
	}
	if tel.CPU == nil {
		tel.CPU = &domain.CPUTelemetry{}
	}
	tel.CPU.Cores = cores
	return nil
}

func parseNproc(output string) (int, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return 0, fmt.Errorf("empty nproc output")
	}
	cores, err := strconv.Atoi(trimmed)
	if err != nil || cores <= 0 {
		return 0, fmt.Errorf("invalid core count %q", trimmed)
	}
	return cores, nil
}

// applyLscpu records clock speed and architecture from lscpu
func applyLscpu(output string, tel *domain.TelemetrySpec) error {
	speed, arch, err := parseLscpu(output)
	if err != nil {
		return err
	}
	if tel.CPU == nil {
		tel.CPU = &domain.CPUTelemetry{}
	}
	if speed != "" {
		tel.CPU.Speed = speed
	}
	if arch != "" {
		tel.CPU.Architecture = arch
	}
	return nil
}

// parseLscpu extracts "CPU max MHz" (falling back to "CPU MHz") and
// "Architecture" from lscpu key: value lines
func parseLscpu(output string) (speed, arch string, err error) {
	if strings.TrimSpace(output) == "" {
		return "", "", fmt.Errorf("empty lscpu output")
	}

	var maxMHz, curMHz string
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Architecture":
			arch = value
		case "CPU max MHz":
			maxMHz = value
		case "CPU MHz":
			curMHz = value
		}
	}

	mhz := maxMHz
	if mhz == "" {
		mhz = curMHz
	}
	if mhz != "" {
		value, perr := strconv.ParseFloat(mhz, 64)
		if perr != nil {
			return "", "", fmt.Errorf("invalid MHz value %q", mhz)
		}
		speed = strconv.FormatFloat(value, 'f', -1, 64) + "MHz"
	}

	if speed == "" && arch == "" {
		return "", "", fmt.Errorf("no usable fields in lscpu output")
	}
	return speed, arch, nil
}

// applyFree records RAM and swap totals from free -b
func applyFree(output string, tel *domain.TelemetrySpec) error {
	ram, swap, err := parseFree(output)
	if err != nil {
		return err
	}
	if tel.Memory == nil {
		tel.Memory = &domain.MemoryTelemetry{}
	}
	tel.Memory.RAM = ram
	tel.Memory.Swap = swap
	return nil
}

// parseFree reads the Mem: and Swap: total columns from free -b output
func parseFree(output string) (ram, swap string, err error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "Mem:":
			ram = fields[1] + "B"
		case "Swap:":
			swap = fields[1] + "B"
		}
	}
	if ram == "" {
		return "", "", fmt.Errorf("no Mem line in free output")
	}
	return ram, swap, nil
}

// applyDfRoot records available space on the root filesystem
func applyDfRoot(output string, tel *domain.TelemetrySpec) error {
	space, err := parseDfRoot(output)
	if err != nil {
		return err
	}
	if tel.Storage == nil {
		tel.Storage = &domain.StorageTelemetry{}
	}
	tel.Storage.Space = space
	return nil
}

// parseDfRoot reads the Available column of a single df -B1 line
// Format: /dev/sda1 1967869837312 23090752512 1844763084800 2% /
func parseDfRoot(output string) (string, error) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 4 {
		return "", fmt.Errorf("unexpected df output %q", output)
	}
	if _, err := strconv.ParseUint(fields[3], 10, 64); err != nil {
		return "", fmt.Errorf("invalid available bytes %q", fields[3])
	}
	return fields[3] + "B", nil
}

// applyRotational classifies the root disk from its rotational flag
func applyRotational(output string, tel *domain.TelemetrySpec) error {
	typ, err := parseRotational(output)
	if err != nil {
		return err
	}
	if tel.Storage == nil {
		tel.Storage = &domain.StorageTelemetry{}
	}
	tel.Storage.Type = typ
	return nil
}

func parseRotational(output string) (string, error) {
	switch strings.TrimSpace(output) {
	case "0":
		return "ssd", nil
	case "1":
		return "hdd", nil
	default:
		return "", fmt.Errorf("unexpected rotational flag %q", strings.TrimSpace(output))
	}
}

// applyOSRelease records the distribution id and version
func applyOSRelease(output string, tel *domain.TelemetrySpec) error {
	name, version, err := parseOSRelease(output)
	if err != nil {
		return err
	}
	if tel.OS == nil {
		tel.OS = &domain.OSTelemetry{}
	}
	tel.OS.Name = name
	tel.OS.Version = version
	return nil
}

// parseOSRelease reads ID and VERSION_ID from /etc/os-release
// Format: KEY=value or KEY="value"
func parseOSRelease(output string) (name, version string, err error) {
	if strings.TrimSpace(output) == "" {
		return "", "", fmt.Errorf("empty os-release output")
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		switch strings.TrimSpace(key) {
		case "ID":
			name = value
		case "VERSION_ID":
			version = value
		}
	}

	if name == "" {
		return "", "", fmt.Errorf("no ID field in os-release output")
	}
	return name, version, nil
}

// applyNvidiaSMI records GPU presence and properties. Empty output means
// no NVIDIA GPU; that is a fact, not an error.
func applyNvidiaSMI(output string, tel *domain.TelemetrySpec) error {
	gpu, err := parseNvidiaSMI(output)
	if err != nil {
		return err
	}
	tel.GPU = gpu
	return nil
}

// parseNvidiaSMI reads one CSV line like
// "NVIDIA GeForce RTX 4090, 24564 MiB, 8.9"
func parseNvidiaSMI(output string) (*domain.GPUTelemetry, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" || strings.Contains(trimmed, "command not found") || strings.Contains(trimmed, "NVIDIA-SMI has failed") {
		return &domain.GPUTelemetry{Present: false}, nil
	}

	// Multiple GPUs report one line each; the first is the primary
	line := strings.SplitN(trimmed, "\n", 2)[0]
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("unexpected nvidia-smi output %q", line)
	}

	gpu := &domain.GPUTelemetry{
		Present: true,
		Name:    strings.TrimSpace(parts[0]),
	}

	// "24564 MiB" -> "24564MiB"
	gpu.VRAM = strings.ReplaceAll(strings.TrimSpace(parts[1]), " ", "")

	capability, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid compute capability %q", parts[2])
	}
	gpu.ComputeCapability = capability

	return gpu, nil
}
