package domain

import "fmt"

// RequirementSpec is the role-indexed requirement table, loaded once per
// configuration epoch and shared read-only across validations.
type RequirementSpec struct {
	Roles map[Role]*RoleRequirements `json:"roles"`
}

// ForRole resolves the requirement subtree for a role
func (s *RequirementSpec) ForRole(role Role) (*RoleRequirements, bool) {
	if s == nil || s.Roles == nil {
		return nil, false
	}
	req, ok := s.Roles[role]
	return req, ok
}

// Validate checks every constraint belongs to the unit family its field
// expects. A violation here is a configuration defect, not participant data.
func (s *RequirementSpec) Validate() error {
	if s == nil || len(s.Roles) == 0 {
		return &MalformedSpecError{Path: "roles", Reason: "no roles declared"}
	}
	for role, req := range s.Roles {
		if req == nil {
			return &MalformedSpecError{Path: string(role), Reason: "empty requirement subtree"}
		}
		if err := req.validate(string(role)); err != nil {
			return err
		}
	}
	return nil
}

// RoleRequirements is one role's requirement subtree. Zero-valued fields
// mean the role does not demand that capability.
type RoleRequirements struct {
	CPU     CPURequirements     `json:"cpu"`
	GPU     GPURequirements     `json:"gpu"`
	Memory  MemoryRequirements  `json:"memory"`
	Storage StorageRequirements `json:"storage"`
	OS      OSRequirements      `json:"os"`
	Network NetworkRequirements `json:"network"`
}

func (r *RoleRequirements) validate(path string) error {
	checks := []struct {
		path       string
		constraint Constraint
		family     UnitFamily
	}{
		{path + ".cpu.min_cores", r.CPU.MinCores, FamilyCount},
		{path + ".cpu.min_speed", r.CPU.MinSpeed, FamilyFrequency},
		{path + ".gpu.min_vram", r.GPU.MinVRAM, FamilyBytes},
		{path + ".gpu.cuda_cores", r.GPU.CUDACores, FamilyCount},
		{path + ".memory.min_ram", r.Memory.MinRAM, FamilyBytes},
		{path + ".memory.min_swap", r.Memory.MinSwap, FamilyBytes},
		{path + ".storage.min_space", r.Storage.MinSpace, FamilyBytes},
		{path + ".storage.iops", r.Storage.IOPS, FamilyCount},
		{path + ".network.bandwidth.download", r.Network.Bandwidth.Download, FamilyBitRate},
		{path + ".network.bandwidth.upload", r.Network.Bandwidth.Upload, FamilyBitRate},
	}

	for _, check := range checks {
		if check.constraint.IsZero() {
			continue
		}
		if check.constraint.Quantity.Family != check.family {
			return &MalformedSpecError{
				Path:   check.path,
				Value:  check.constraint.String(),
				Reason: fmt.Sprintf("unit family %s, expected %s", check.constraint.Quantity.Family, check.family),
			}
		}
	}
	return nil
}

// CPURequirements covers processor demands
type CPURequirements struct {
	MinCores     Constraint `json:"min_cores"`
	MinSpeed     Constraint `json:"min_speed"`
	Architecture string     `json:"architecture,omitempty"`
}

// GPURequirements covers accelerator demands. When Required is false the
// nested fields are ignored.
type GPURequirements struct {
	Required             bool       `json:"required"`
	MinVRAM              Constraint `json:"min_vram"`
	CUDACores            Constraint `json:"cuda_cores"`
	MinComputeCapability float64    `json:"min_compute_capability,omitempty"`
}

// MemoryRequirements covers RAM and swap demands
type MemoryRequirements struct {
	MinRAM  Constraint `json:"min_ram"`
	MinSwap Constraint `json:"min_swap"`
}

// StorageRequirements covers disk demands
type StorageRequirements struct {
	MinSpace Constraint `json:"min_space"`
	Type     string     `json:"type,omitempty"`
	IOPS     Constraint `json:"iops"`
}

// OSRequirements covers operating system demands
type OSRequirements struct {
	Name    string            `json:"name,omitempty"`
	Version VersionConstraint `json:"version"`
}

// NetworkRequirements covers connectivity demands
type NetworkRequirements struct {
	Bandwidth BandwidthRequirements `json:"bandwidth"`
}

// BandwidthRequirements covers throughput thresholds in each direction
type BandwidthRequirements struct {
	Download Constraint `json:"download"`
	Upload   Constraint `json:"upload"`
}
