// Package codec translates telemetry submissions and admission reports
// between wire formats.
package codec

import (
	"io"

	"gridwarden/internal/domain"
)

// Decoder reads a telemetry submission from a wire format
type Decoder interface {
	Decode(r io.Reader) (*domain.TelemetrySpec, error)
	Format() string
}

// Encoder writes admission reports in a wire format
type Encoder interface {
	Encode(report *domain.AdmissionReport, w io.Writer) error
	EncodeList(reports []*domain.AdmissionReport, w io.Writer) error
	Format() string
}

// DecoderFor resolves a decoder by format name, defaulting to JSON
func DecoderFor(format string) Decoder {
	switch format {
	case "yaml", "yml":
		return NewYAMLCodec()
	default:
		return NewJSONCodec()
	}
}

// EncoderFor resolves an encoder by format name, defaulting to JSON
func EncoderFor(format string) Encoder {
	switch format {
	case "yaml", "yml":
		return NewYAMLCodec()
	case "text", "txt":
		return NewTextCodec()
	default:
		return NewJSONCodec()
	}
}
