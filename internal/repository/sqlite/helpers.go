package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"gridwarden/internal/domain"
)

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*domain.AdmissionReport, error) {
	var (
		report     domain.AdmissionReport
		role       string
		passed     int64
		violations sql.NullString
		createdAt  time.Time
	)

	if err := s.Scan(&report.ID, &report.NodeID, &role, &passed, &report.Source, &violations, &createdAt); err != nil {
		return nil, err
	}

	report.Role = domain.Role(role)
	report.Passed = passed != 0
	report.CreatedAt = createdAt

	if violations.Valid && violations.String != "" {
		if err := json.Unmarshal([]byte(violations.String), &report.Violations); err != nil {
			return nil, err
		}
	}

	return &report, nil
}

// marshalViolations encodes violations as a nullable JSON column
func marshalViolations(violations []domain.Violation) (sql.NullString, error) {
	if len(violations) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(violations)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
