package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdmissionReport is a persisted record of one admission decision.
// The validation engine itself is stateless; reports exist so operators
// can audit why a node was admitted or turned away.
type AdmissionReport struct {
	ID         string      `json:"id"`
	NodeID     string      `json:"node_id"`
	Role       Role        `json:"role"`
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
	Source     string      `json:"source"` // "reported" or "probed"
	CreatedAt  time.Time   `json:"created_at"`
}

// ReportSource values
const (
	SourceReported = "reported"
	SourceProbed   = "probed"
)

// NewAdmissionReport builds a report from a validation result
func NewAdmissionReport(nodeID string, source string, result ValidationResult) *AdmissionReport {
	return &AdmissionReport{
		ID:         uuid.NewString(),
		NodeID:     nodeID,
		Role:       result.Role,
		Passed:     result.Passed,
		Violations: result.Violations,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
}
