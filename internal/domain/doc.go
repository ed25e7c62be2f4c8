// Package domain contains the core types of the admission validator:
// quantities and version constraints, the role-indexed requirement schema,
// reported node telemetry, and validation results.
//
// Everything in this package is a pure value type. RequirementSpec is
// immutable after load and safe to share across concurrent validations;
// telemetry and results are per-call allocations.
package domain
