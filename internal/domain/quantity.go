package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitFamily identifies a class of comparable quantities
type UnitFamily string

const (
	FamilyFrequency UnitFamily = "frequency" // base unit: Hz
	FamilyBytes     UnitFamily = "bytes"     // base unit: bytes
	FamilyBitRate   UnitFamily = "bitrate"   // base unit: bits/sec
	FamilyCount     UnitFamily = "count"     // dimensionless
)

// Op is a comparison operator embedded in a threshold string
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
	OpGT Op = ">"
	OpLT Op = "<"
	OpEQ Op = "=="
)

// operators in match order: two-character operators must be tried first
// so ">=2GHz" doesn't parse as ">" followed by "=2GHz"
var operators = []Op{OpGE, OpLE, OpEQ, OpGT, OpLT}

// unitTable maps a lowercased suffix to its base-unit multiplier, per family.
// The count family accepts only a bare number.
var unitTable = map[UnitFamily]map[string]float64{
	FamilyFrequency: {
		"hz":  1,
		"khz": 1e3,
		"mhz": 1e6,
		"ghz": 1e9,
	},
	FamilyBytes: {
		"b":  1,
		"kb": 1e3,
		"mb": 1e6,
		"gb": 1e9,
		"tb": 1e12,
		// binary prefixes show up in tooling output (free, nvidia-smi)
		"kib": 1 << 10,
		"mib": 1 << 20,
		"gib": 1 << 30,
		"tib": 1 << 40,
	},
	FamilyBitRate: {
		"bps":  1,
		"kbps": 1e3,
		"mbps": 1e6,
		"gbps": 1e9,
	},
	FamilyCount: {},
}

// Quantity is a normalized magnitude in a family's base unit.
// Raw preserves the original string for diagnostics.
type Quantity struct {
	Magnitude float64    `json:"magnitude"`
	Family    UnitFamily `json:"family"`
	Raw       string     `json:"raw"`
}

// IsZero reports whether the quantity was never set
func (q Quantity) IsZero() bool {
	return q.Family == ""
}

// String renders the original text, falling back to the normalized value
func (q Quantity) String() string {
	if q.Raw != "" {
		return q.Raw
	}
	return strconv.FormatFloat(q.Magnitude, 'f', -1, 64)
}

// Comparable reports whether two quantities share a unit family
func (q Quantity) Comparable(other Quantity) bool {
	return q.Family != "" && q.Family == other.Family
}

// Constraint is a threshold: an operator applied to a quantity.
// Raw preserves the requirement's original text for diagnostics.
type Constraint struct {
	Op       Op       `json:"op"`
	Quantity Quantity `json:"quantity"`
	Raw      string   `json:"raw,omitempty"`
}

// IsZero reports whether the constraint was never set (field absent in spec)
func (c Constraint) IsZero() bool {
	return c.Quantity.IsZero()
}

// String renders the constraint as it was written in the requirement table
func (c Constraint) String() string {
	if c.Raw != "" {
		return c.Raw
	}
	if c.IsZero() {
		return ""
	}
	return string(c.Op) + c.Quantity.String()
}

// Satisfied reports whether an actual quantity meets the constraint.
// Quantities from different families never satisfy each other.
func (c Constraint) Satisfied(actual Quantity) bool {
	if !c.Quantity.Comparable(actual) {
		return false
	}
	switch c.Op {
	case OpGE:
		return actual.Magnitude >= c.Quantity.Magnitude
	case OpGT:
		return actual.Magnitude > c.Quantity.Magnitude
	case OpLE:
		return actual.Magnitude <= c.Quantity.Magnitude
	case OpLT:
		return actual.Magnitude < c.Quantity.Magnitude
	case OpEQ:
		return actual.Magnitude == c.Quantity.Magnitude
	default:
		return false
	}
}

// splitOp strips a leading comparison operator, if present
func splitOp(raw string) (Op, string, bool) {
	for _, op := range operators {
		if strings.HasPrefix(raw, string(op)) {
			return op, raw[len(op):], true
		}
	}
	return "", raw, false
}

// splitUnit separates the numeric literal from its trailing unit suffix
func splitUnit(raw string) (number, unit string) {
	i := len(raw)
	for i > 0 {
		c := raw[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	return raw[:i], raw[i:]
}

// ParseQuantity parses a telemetry fact like "2.4GHz" or "8" into a
// normalized Quantity. Operators are not allowed on facts.
func ParseQuantity(raw string, family UnitFamily) (Quantity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Quantity{}, fmt.Errorf("empty quantity")
	}
	if op, _, ok := splitOp(trimmed); ok {
		return Quantity{}, fmt.Errorf("unexpected operator %q in value %q", op, raw)
	}
	return parseMagnitude(trimmed, family)
}

// ParseConstraint parses a requirement threshold like ">=100Mbps".
// A missing operator defaults to >= (minimum-threshold semantics).
func ParseConstraint(raw string, family UnitFamily) (Constraint, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Constraint{}, fmt.Errorf("empty constraint")
	}

	op, rest, ok := splitOp(trimmed)
	if !ok {
		op = OpGE
	}

	q, err := parseMagnitude(strings.TrimSpace(rest), family)
	if err != nil {
		return Constraint{}, err
	}

	return Constraint{Op: op, Quantity: q, Raw: trimmed}, nil
}

// MinCount builds a >= constraint for a plain integer field like min_cores
func MinCount(n int) Constraint {
	return Constraint{
		Op: OpGE,
		Quantity: Quantity{
			Magnitude: float64(n),
			Family:    FamilyCount,
			Raw:       strconv.Itoa(n),
		},
	}
}

// CountQuantity wraps a plain integer telemetry fact as a dimensionless quantity
func CountQuantity(n int) Quantity {
	return Quantity{
		Magnitude: float64(n),
		Family:    FamilyCount,
		Raw:       strconv.Itoa(n),
	}
}

func parseMagnitude(raw string, family UnitFamily) (Quantity, error) {
	number, unit := splitUnit(raw)
	number = strings.TrimSpace(number)
	unit = strings.ToLower(strings.TrimSpace(unit))

	if number == "" {
		return Quantity{}, fmt.Errorf("no numeric magnitude in %q", raw)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid magnitude %q: %w", number, err)
	}
	if value < 0 {
		return Quantity{}, fmt.Errorf("negative magnitude %q", raw)
	}

	if family == FamilyCount {
		if unit != "" {
			return Quantity{}, fmt.Errorf("unit %q not allowed for dimensionless value %q", unit, raw)
		}
		return Quantity{Magnitude: value, Family: FamilyCount, Raw: raw}, nil
	}

	if unit == "" {
		return Quantity{}, fmt.Errorf("missing unit in %q (family %s)", raw, family)
	}

	table, ok := unitTable[family]
	if !ok {
		return Quantity{}, fmt.Errorf("unknown unit family %q", family)
	}

	multiplier, ok := table[unit]
	if !ok {
		return Quantity{}, fmt.Errorf("unit %q is not a %s unit", unit, family)
	}

	return Quantity{Magnitude: value * multiplier, Family: family, Raw: raw}, nil
}
