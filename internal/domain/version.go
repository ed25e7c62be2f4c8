package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered tuple of dotted integer components, e.g. 20.04.1
type Version []int

// ParseVersion parses a dotted version string into its integer components
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty version")
	}

	parts := strings.Split(trimmed, ".")
	version := make(Version, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q in %q", part, raw)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative version component in %q", raw)
		}
		version = append(version, n)
	}

	return version, nil
}

// String renders the version in dotted form
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// Compare orders two versions component-wise, padding the shorter tuple
// with zeros (20.04 == 20.04.0). Returns -1, 0 or 1.
func (v Version) Compare(other Version) int {
	n := len(v)
	if len(other) > n {
		n = len(other)
	}

	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v) {
			a = v[i]
		}
		if i < len(other) {
			b = other[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}
	return 0
}

// VersionConstraint is an operator applied to a version, e.g. ">=20.04"
type VersionConstraint struct {
	Op      Op      `json:"op"`
	Version Version `json:"version"`
	Raw     string  `json:"raw"`
}

// IsZero reports whether the constraint was never set
func (c VersionConstraint) IsZero() bool {
	return len(c.Version) == 0
}

// String renders the constraint as it was written in the requirement table
func (c VersionConstraint) String() string {
	if c.Raw != "" {
		return c.Raw
	}
	if c.IsZero() {
		return ""
	}
	return string(c.Op) + c.Version.String()
}

// ParseVersionConstraint parses a version threshold such as ">=20.04".
// A missing operator defaults to >=.
func ParseVersionConstraint(raw string) (VersionConstraint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return VersionConstraint{}, fmt.Errorf("empty version constraint")
	}

	op, rest, ok := splitOp(trimmed)
	if !ok {
		op = OpGE
	}

	version, err := ParseVersion(rest)
	if err != nil {
		return VersionConstraint{}, err
	}

	return VersionConstraint{Op: op, Version: version, Raw: trimmed}, nil
}

// Matches reports whether an actual version satisfies the constraint
func (c VersionConstraint) Matches(actual Version) bool {
	cmp := actual.Compare(c.Version)
	switch c.Op {
	case OpGE:
		return cmp >= 0
	case OpGT:
		return cmp > 0
	case OpLE:
		return cmp <= 0
	case OpLT:
		return cmp < 0
	case OpEQ:
		return cmp == 0
	default:
		return false
	}
}
