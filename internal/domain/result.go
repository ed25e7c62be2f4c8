package domain

import "fmt"

// Reason classifies a single field-level deficiency
type Reason string

const (
	// ReasonMissingCapability - a demanded capability is absent entirely (e.g. no GPU)
	ReasonMissingCapability Reason = "missing_capability"
	// ReasonMismatch - an exact-match field differs (architecture, os name, storage type)
	ReasonMismatch Reason = "mismatch"
	// ReasonBelowThreshold - a quantity fails its threshold constraint
	ReasonBelowThreshold Reason = "below_threshold"
	// ReasonVersionTooLow - an OS version fails its version constraint
	ReasonVersionTooLow Reason = "version_too_low"
	// ReasonMissingField - telemetry omits (or garbles) a field a requirement demands
	ReasonMissingField Reason = "missing_field"
)

// Violation is one field-level deficiency discovered during validation
type Violation struct {
	FieldPath string `json:"field_path"`
	Expected  string `json:"expected"`
	Actual    string `json:"actual"`
	Reason    Reason `json:"reason"`
}

// ValidationResult is the complete outcome of validating one node's
// telemetry against its role's requirements. Violations keep field
// declaration order so results are reproducible.
type ValidationResult struct {
	Role       Role        `json:"role"`
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}

// MalformedSpecError reports a requirement table that violates the parser
// grammar or uses a unit outside the field's family. It is fatal to the
// loader: validation never starts under a malformed table.
type MalformedSpecError struct {
	Path   string
	Value  string
	Reason string
}

func (e *MalformedSpecError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed spec at %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("malformed spec at %s: %q: %s", e.Path, e.Value, e.Reason)
}
