package codec

import (
	"fmt"
	"io"

	"gridwarden/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML telemetry and report payloads
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Decode reads a telemetry submission from YAML
func (c *YAMLCodec) Decode(r io.Reader) (*domain.TelemetrySpec, error) {
	var tel domain.TelemetrySpec
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&tel); err != nil {
		return nil, fmt.Errorf("failed to parse YAML telemetry: %w", err)
	}

	return &tel, nil
}

// yamlReport mirrors AdmissionReport for YAML output
type yamlReport struct {
	ID         string          `yaml:"id"`
	NodeID     string          `yaml:"node_id"`
	Role       string          `yaml:"role"`
	Passed     bool            `yaml:"passed"`
	Violations []yamlViolation `yaml:"violations,omitempty"`
	Source     string          `yaml:"source"`
	CreatedAt  string          `yaml:"created_at"`
}

type yamlViolation struct {
	FieldPath string `yaml:"field_path"`
	Expected  string `yaml:"expected"`
	Actual    string `yaml:"actual"`
	Reason    string `yaml:"reason"`
}

func toYAMLReport(report *domain.AdmissionReport) yamlReport {
	yr := yamlReport{
		ID:        report.ID,
		NodeID:    report.NodeID,
		Role:      string(report.Role),
		Passed:    report.Passed,
		Source:    report.Source,
		CreatedAt: report.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, v := range report.Violations {
		yr.Violations = append(yr.Violations, yamlViolation{
			FieldPath: v.FieldPath,
			Expected:  v.Expected,
			Actual:    v.Actual,
			Reason:    string(v.Reason),
		})
	}
	return yr
}

// Encode writes an admission report as YAML
func (c *YAMLCodec) Encode(report *domain.AdmissionReport, w io.Writer) error {
	return encodeYAML(toYAMLReport(report), w)
}

// EncodeList writes a report listing as YAML
func (c *YAMLCodec) EncodeList(reports []*domain.AdmissionReport, w io.Writer) error {
	out := make([]yamlReport, 0, len(reports))
	for _, report := range reports {
		out = append(out, toYAMLReport(report))
	}
	return encodeYAML(out, w)
}

func encodeYAML(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
