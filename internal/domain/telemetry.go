package domain

// TelemetrySpec is a participant's reported (or independently measured)
// capabilities. It mirrors the requirement schema structurally, but every
// field is a concrete fact: raw unit strings, no operators.
//
// Sections and fields are optional. Whatever a node fails to report is
// recorded as a violation against any requirement demanding it; omission
// never bypasses a check.
type TelemetrySpec struct {
	CPU     *CPUTelemetry     `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	GPU     *GPUTelemetry     `json:"gpu,omitempty" yaml:"gpu,omitempty"`
	Memory  *MemoryTelemetry  `json:"memory,omitempty" yaml:"memory,omitempty"`
	Storage *StorageTelemetry `json:"storage,omitempty" yaml:"storage,omitempty"`
	OS      *OSTelemetry      `json:"os,omitempty" yaml:"os,omitempty"`
	Network *NetworkTelemetry `json:"network,omitempty" yaml:"network,omitempty"`
}

// CPUTelemetry reports processor facts
type CPUTelemetry struct {
	Cores        int    `json:"cores,omitempty" yaml:"cores,omitempty"`
	Speed        string `json:"speed,omitempty" yaml:"speed,omitempty"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture,omitempty"`
}

// GPUTelemetry reports accelerator facts
type GPUTelemetry struct {
	Present           bool    `json:"present" yaml:"present"`
	Name              string  `json:"name,omitempty" yaml:"name,omitempty"`
	VRAM              string  `json:"vram,omitempty" yaml:"vram,omitempty"`
	CUDACores         int     `json:"cuda_cores,omitempty" yaml:"cuda_cores,omitempty"`
	ComputeCapability float64 `json:"compute_capability,omitempty" yaml:"compute_capability,omitempty"`
}

// MemoryTelemetry reports RAM and swap facts
type MemoryTelemetry struct {
	RAM  string `json:"ram,omitempty" yaml:"ram,omitempty"`
	Swap string `json:"swap,omitempty" yaml:"swap,omitempty"`
}

// StorageTelemetry reports disk facts
type StorageTelemetry struct {
	Space string `json:"space,omitempty" yaml:"space,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	IOPS  int    `json:"iops,omitempty" yaml:"iops,omitempty"`
}

// OSTelemetry reports operating system facts
type OSTelemetry struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// NetworkTelemetry reports measured connectivity facts
type NetworkTelemetry struct {
	Download string `json:"download,omitempty" yaml:"download,omitempty"`
	Upload   string `json:"upload,omitempty" yaml:"upload,omitempty"`
}
