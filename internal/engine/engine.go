// Package engine implements the admission decision function: a pure,
// side-effect-free walk of a role's requirement subtree against reported
// telemetry. It may be invoked concurrently without synchronization.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"gridwarden/internal/domain"
)

// Validate compares a node's telemetry against the requirement subtree for
// its role and returns the complete, ordered violation list. It never
// short-circuits: operators diagnosing a rejected node see every deficiency
// at once. The only error case is a role the requirement table does not
// declare.
func Validate(role domain.Role, spec *domain.RequirementSpec, tel *domain.TelemetrySpec) (domain.ValidationResult, error) {
	req, ok := spec.ForRole(role)
	if !ok {
		return domain.ValidationResult{}, fmt.Errorf("role %q not declared in requirement spec", role)
	}
	if tel == nil {
		tel = &domain.TelemetrySpec{}
	}

	w := walk{}

	// cpu
	if !req.CPU.MinCores.IsZero() {
		if tel.CPU == nil || tel.CPU.Cores == 0 {
			w.missing("cpu.min_cores", req.CPU.MinCores.String(), "")
		} else {
			w.count("cpu.min_cores", req.CPU.MinCores, tel.CPU.Cores)
		}
	}
	if !req.CPU.MinSpeed.IsZero() {
		speed := ""
		if tel.CPU != nil {
			speed = tel.CPU.Speed
		}
		w.threshold("cpu.min_speed", req.CPU.MinSpeed, speed)
	}
	if req.CPU.Architecture != "" {
		arch := ""
		if tel.CPU != nil {
			arch = tel.CPU.Architecture
		}
		w.exact("cpu.architecture", req.CPU.Architecture, arch)
	}

	// gpu: the required gate comes first; when the requirement does not
	// demand a GPU, every nested field is skipped
	if req.GPU.Required {
		if tel.GPU == nil || !tel.GPU.Present {
			w.add(domain.Violation{
				FieldPath: "gpu",
				Expected:  "present",
				Actual:    "absent",
				Reason:    domain.ReasonMissingCapability,
			})
		} else {
			if !req.GPU.MinVRAM.IsZero() {
				w.threshold("gpu.min_vram", req.GPU.MinVRAM, tel.GPU.VRAM)
			}
			if !req.GPU.CUDACores.IsZero() {
				if tel.GPU.CUDACores == 0 {
					w.missing("gpu.cuda_cores", req.GPU.CUDACores.String(), "")
				} else {
					w.count("gpu.cuda_cores", req.GPU.CUDACores, tel.GPU.CUDACores)
				}
			}
			if req.GPU.MinComputeCapability > 0 {
				w.computeCapability(req.GPU.MinComputeCapability, tel.GPU.ComputeCapability)
			}
		}
	}

	// memory
	if !req.Memory.MinRAM.IsZero() {
		ram := ""
		if tel.Memory != nil {
			ram = tel.Memory.RAM
		}
		w.threshold("memory.min_ram", req.Memory.MinRAM, ram)
	}
	if !req.Memory.MinSwap.IsZero() {
		swap := ""
		if tel.Memory != nil {
			swap = tel.Memory.Swap
		}
		w.threshold("memory.min_swap", req.Memory.MinSwap, swap)
	}

	// storage
	if !req.Storage.MinSpace.IsZero() {
		space := ""
		if tel.Storage != nil {
			space = tel.Storage.Space
		}
		w.threshold("storage.min_space", req.Storage.MinSpace, space)
	}
	if req.Storage.Type != "" {
		typ := ""
		if tel.Storage != nil {
			typ = tel.Storage.Type
		}
		w.exact("storage.type", req.Storage.Type, typ)
	}
	if !req.Storage.IOPS.IsZero() {
		if tel.Storage == nil || tel.Storage.IOPS == 0 {
			w.missing("storage.iops", req.Storage.IOPS.String(), "")
		} else {
			w.count("storage.iops", req.Storage.IOPS, tel.Storage.IOPS)
		}
	}

	// os
	if req.OS.Name != "" {
		name := ""
		if tel.OS != nil {
			name = tel.OS.Name
		}
		w.exact("os.name", req.OS.Name, name)
	}
	if !req.OS.Version.IsZero() {
		version := ""
		if tel.OS != nil {
			version = tel.OS.Version
		}
		w.osVersion(req.OS.Version, version)
	}

	// network
	if !req.Network.Bandwidth.Download.IsZero() {
		download := ""
		if tel.Network != nil {
			download = tel.Network.Download
		}
		w.threshold("network.bandwidth.download", req.Network.Bandwidth.Download, download)
	}
	if !req.Network.Bandwidth.Upload.IsZero() {
		upload := ""
		if tel.Network != nil {
			upload = tel.Network.Upload
		}
		w.threshold("network.bandwidth.upload", req.Network.Bandwidth.Upload, upload)
	}

	return domain.ValidationResult{
		Role:       role,
		Passed:     len(w.violations) == 0,
		Violations: w.violations,
	}, nil
}

// walk accumulates violations in field declaration order
type walk struct {
	violations []domain.Violation
}

func (w *walk) add(v domain.Violation) {
	w.violations = append(w.violations, v)
}

// missing records a demanded field the telemetry did not (usably) report
func (w *walk) missing(path, expected, actual string) {
	w.add(domain.Violation{
		FieldPath: path,
		Expected:  expected,
		Actual:    actual,
		Reason:    domain.ReasonMissingField,
	})
}

// threshold checks a raw telemetry string against a quantity constraint.
// An unparseable fact counts as missing: a value that cannot be credited
// must not slip past the check.
func (w *walk) threshold(path string, c domain.Constraint, raw string) {
	if raw == "" {
		w.missing(path, c.String(), "")
		return
	}
	actual, err := domain.ParseQuantity(raw, c.Quantity.Family)
	if err != nil {
		w.missing(path, c.String(), raw)
		return
	}
	if !c.Satisfied(actual) {
		w.add(domain.Violation{
			FieldPath: path,
			Expected:  c.String(),
			Actual:    actual.String(),
			Reason:    domain.ReasonBelowThreshold,
		})
	}
}

// count checks an integer telemetry fact against a dimensionless constraint
func (w *walk) count(path string, c domain.Constraint, n int) {
	actual := domain.CountQuantity(n)
	if !c.Satisfied(actual) {
		w.add(domain.Violation{
			FieldPath: path,
			Expected:  c.String(),
			Actual:    actual.String(),
			Reason:    domain.ReasonBelowThreshold,
		})
	}
}

// exact checks a case-insensitive string equality field
func (w *walk) exact(path, expected, actual string) {
	if actual == "" {
		w.missing(path, expected, "")
		return
	}
	if !strings.EqualFold(expected, actual) {
		w.add(domain.Violation{
			FieldPath: path,
			Expected:  expected,
			Actual:    actual,
			Reason:    domain.ReasonMismatch,
		})
	}
}

func (w *walk) osVersion(c domain.VersionConstraint, raw string) {
	const path = "os.version"
	if raw == "" {
		w.missing(path, c.String(), "")
		return
	}
	actual, err := domain.ParseVersion(raw)
	if err != nil {
		w.missing(path, c.String(), raw)
		return
	}
	if !c.Matches(actual) {
		w.add(domain.Violation{
			FieldPath: path,
			Expected:  c.String(),
			Actual:    actual.String(),
			Reason:    domain.ReasonVersionTooLow,
		})
	}
}

func (w *walk) computeCapability(required, actual float64) {
	const path = "gpu.min_compute_capability"
	expected := ">=" + strconv.FormatFloat(required, 'g', -1, 64)
	if actual == 0 {
		w.missing(path, expected, "")
		return
	}
	if actual < required {
		w.add(domain.Violation{
			FieldPath: path,
			Expected:  expected,
			Actual:    strconv.FormatFloat(actual, 'g', -1, 64),
			Reason:    domain.ReasonBelowThreshold,
		})
	}
}
