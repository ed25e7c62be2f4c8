package codec

import (
	"fmt"
	"io"

	"gridwarden/internal/domain"
	"gridwarden/internal/engine"
)

// TextCodec renders admission reports as plain-text summaries for
// operators reading terminal output. It is encode-only.
type TextCodec struct{}

// NewTextCodec creates a new text codec
func NewTextCodec() *TextCodec {
	return &TextCodec{}
}

// Format returns the codec format identifier
func (c *TextCodec) Format() string {
	return "text"
}

// Encode writes an admission report as a human-readable summary
func (c *TextCodec) Encode(report *domain.AdmissionReport, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "node %s (%s, %s)\n", report.NodeID, report.Source, report.CreatedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	_, err := io.WriteString(w, engine.Render(domain.ValidationResult{
		Role:       report.Role,
		Passed:     report.Passed,
		Violations: report.Violations,
	}))
	return err
}

// EncodeList writes a report listing, newest first, blank-line separated
func (c *TextCodec) EncodeList(reports []*domain.AdmissionReport, w io.Writer) error {
	for i, report := range reports {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := c.Encode(report, w); err != nil {
			return err
		}
	}
	return nil
}
