// Package loader reads the declarative role-requirement table from YAML
// and converts it into the typed, validated in-memory schema. String
// thresholds are parsed exactly once here; validation calls never re-parse
// the table.
package loader

import (
	"fmt"
	"os"

	"gridwarden/internal/domain"

	"gopkg.in/yaml.v3"
)

// RequirementsYAML mirrors the requirement table file structure
type RequirementsYAML struct {
	Version int                  `yaml:"version,omitempty"`
	Roles   map[string]*RoleYAML `yaml:"roles"`
}

// RoleYAML is one role's requirement subtree as written in the file
type RoleYAML struct {
	CPU     *CPUYAML     `yaml:"cpu,omitempty"`
	GPU     *GPUYAML     `yaml:"gpu,omitempty"`
	Memory  *MemoryYAML  `yaml:"memory,omitempty"`
	Storage *StorageYAML `yaml:"storage,omitempty"`
	OS      *OSYAML      `yaml:"os,omitempty"`
	Network *NetworkYAML `yaml:"network,omitempty"`
}

// CPUYAML holds processor requirements
type CPUYAML struct {
	MinCores     int    `yaml:"min_cores,omitempty"`
	MinSpeed     string `yaml:"min_speed,omitempty"`
	Architecture string `yaml:"architecture,omitempty"`
}

// GPUYAML holds accelerator requirements
type GPUYAML struct {
	Required             bool    `yaml:"required"`
	MinVRAM              string  `yaml:"min_vram,omitempty"`
	CUDACores            int     `yaml:"cuda_cores,omitempty"`
	MinComputeCapability float64 `yaml:"min_compute_capability,omitempty"`
}

// MemoryYAML holds RAM/swap requirements
type MemoryYAML struct {
	MinRAM  string `yaml:"min_ram,omitempty"`
	MinSwap string `yaml:"min_swap,omitempty"`
}

// StorageYAML holds disk requirements
type StorageYAML struct {
	MinSpace string `yaml:"min_space,omitempty"`
	Type     string `yaml:"type,omitempty"`
	IOPS     int    `yaml:"iops,omitempty"`
}

// OSYAML holds operating system requirements
type OSYAML struct {
	Name    string `yaml:"name,omitempty"`
	Version string `yaml:"version,omitempty"`
}

// NetworkYAML holds connectivity requirements
type NetworkYAML struct {
	Bandwidth *BandwidthYAML `yaml:"bandwidth,omitempty"`
}

// BandwidthYAML holds directional throughput thresholds
type BandwidthYAML struct {
	Download string `yaml:"download,omitempty"`
	Upload   string `yaml:"upload,omitempty"`
}

// LoadRequirements loads and validates the requirement table from a file
func LoadRequirements(path string) (*domain.RequirementSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}
	return ParseRequirements(data)
}

// ParseRequirements parses the requirement table from YAML bytes. Any
// threshold that violates the quantity/version grammar, or that uses a unit
// outside the field's family, surfaces as *domain.MalformedSpecError with
// the offending field path.
func ParseRequirements(data []byte) (*domain.RequirementSpec, error) {
	var raw RequirementsYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse requirements: %w", err)
	}

	if len(raw.Roles) == 0 {
		return nil, &domain.MalformedSpecError{Path: "roles", Reason: "no roles declared"}
	}

	spec := &domain.RequirementSpec{Roles: make(map[domain.Role]*domain.RoleRequirements, len(raw.Roles))}
	for name, roleYAML := range raw.Roles {
		role, err := domain.ParseRole(name)
		if err != nil {
			return nil, &domain.MalformedSpecError{Path: name, Reason: err.Error()}
		}
		req, err := convertRole(string(role), roleYAML)
		if err != nil {
			return nil, err
		}
		spec.Roles[role] = req
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return spec, nil
}

func convertRole(path string, y *RoleYAML) (*domain.RoleRequirements, error) {
	if y == nil {
		return nil, &domain.MalformedSpecError{Path: path, Reason: "empty requirement subtree"}
	}

	req := &domain.RoleRequirements{}

	if y.CPU != nil {
		if err := setCount(&req.CPU.MinCores, y.CPU.MinCores, path+".cpu.min_cores"); err != nil {
			return nil, err
		}
		if err := setConstraint(&req.CPU.MinSpeed, y.CPU.MinSpeed, domain.FamilyFrequency, path+".cpu.min_speed"); err != nil {
			return nil, err
		}
		req.CPU.Architecture = y.CPU.Architecture
	}

	if y.GPU != nil {
		req.GPU.Required = y.GPU.Required
		if err := setConstraint(&req.GPU.MinVRAM, y.GPU.MinVRAM, domain.FamilyBytes, path+".gpu.min_vram"); err != nil {
			return nil, err
		}
		if err := setCount(&req.GPU.CUDACores, y.GPU.CUDACores, path+".gpu.cuda_cores"); err != nil {
			return nil, err
		}
		if y.GPU.MinComputeCapability < 0 {
			return nil, &domain.MalformedSpecError{
				Path:   path + ".gpu.min_compute_capability",
				Value:  fmt.Sprintf("%g", y.GPU.MinComputeCapability),
				Reason: "negative threshold",
			}
		}
		req.GPU.MinComputeCapability = y.GPU.MinComputeCapability
	}

	if y.Memory != nil {
		if err := setConstraint(&req.Memory.MinRAM, y.Memory.MinRAM, domain.FamilyBytes, path+".memory.min_ram"); err != nil {
			return nil, err
		}
		if err := setConstraint(&req.Memory.MinSwap, y.Memory.MinSwap, domain.FamilyBytes, path+".memory.min_swap"); err != nil {
			return nil, err
		}
	}

	if y.Storage != nil {
		if err := setConstraint(&req.Storage.MinSpace, y.Storage.MinSpace, domain.FamilyBytes, path+".storage.min_space"); err != nil {
			return nil, err
		}
		req.Storage.Type = y.Storage.Type
		if err := setCount(&req.Storage.IOPS, y.Storage.IOPS, path+".storage.iops"); err != nil {
			return nil, err
		}
	}

	if y.OS != nil {
		req.OS.Name = y.OS.Name
		if y.OS.Version != "" {
			version, err := domain.ParseVersionConstraint(y.OS.Version)
			if err != nil {
				return nil, &domain.MalformedSpecError{
					Path:   path + ".os.version",
					Value:  y.OS.Version,
					Reason: err.Error(),
				}
			}
			req.OS.Version = version
		}
	}

	if y.Network != nil && y.Network.Bandwidth != nil {
		if err := setConstraint(&req.Network.Bandwidth.Download, y.Network.Bandwidth.Download, domain.FamilyBitRate, path+".network.bandwidth.download"); err != nil {
			return nil, err
		}
		if err := setConstraint(&req.Network.Bandwidth.Upload, y.Network.Bandwidth.Upload, domain.FamilyBitRate, path+".network.bandwidth.upload"); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// setCount converts a plain integer threshold. Zero means "not demanded";
// a negative value is malformed, never coerced.
func setCount(dst *domain.Constraint, n int, path string) error {
	if n < 0 {
		return &domain.MalformedSpecError{
			Path:   path,
			Value:  fmt.Sprintf("%d", n),
			Reason: "negative count",
		}
	}
	if n > 0 {
		*dst = domain.MinCount(n)
	}
	return nil
}

func setConstraint(dst *domain.Constraint, raw string, family domain.UnitFamily, path string) error {
	if raw == "" {
		return nil
	}
	c, err := domain.ParseConstraint(raw, family)
	if err != nil {
		return &domain.MalformedSpecError{Path: path, Value: raw, Reason: err.Error()}
	}
	*dst = c
	return nil
}
