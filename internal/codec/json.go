package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"gridwarden/internal/domain"
)

// JSONCodec handles JSON telemetry and report payloads
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Decode reads a telemetry submission from JSON
func (c *JSONCodec) Decode(r io.Reader) (*domain.TelemetrySpec, error) {
	var tel domain.TelemetrySpec
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&tel); err != nil {
		return nil, fmt.Errorf("failed to parse JSON telemetry: %w", err)
	}

	return &tel, nil
}

// Encode writes an admission report as JSON
func (c *JSONCodec) Encode(report *domain.AdmissionReport, w io.Writer) error {
	return encodeJSON(report, w)
}

// EncodeList writes a report listing as JSON
func (c *JSONCodec) EncodeList(reports []*domain.AdmissionReport, w io.Writer) error {
	return encodeJSON(reports, w)
}

func encodeJSON(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	// Keep operator prefixes like ">=" readable rather than unicode-escaped
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
