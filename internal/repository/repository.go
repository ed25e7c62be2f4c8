package repository

import (
	"context"
	"time"

	"gridwarden/internal/domain"
)

// Repository defines the interface for admission report persistence
type Repository interface {
	// SaveReport stores a new admission report
	SaveReport(ctx context.Context, report *domain.AdmissionReport) error

	// GetReport retrieves a report by ID, nil if not found
	GetReport(ctx context.Context, id string) (*domain.AdmissionReport, error)

	// ListReports returns a node's reports, newest first, up to limit
	ListReports(ctx context.Context, nodeID string, limit int) ([]*domain.AdmissionReport, error)

	// LatestReport returns a node's most recent report, nil if none
	LatestReport(ctx context.Context, nodeID string) (*domain.AdmissionReport, error)

	// PruneReports deletes reports older than the cutoff, returning the count
	PruneReports(ctx context.Context, before time.Time) (int64, error)

	// Close releases resources
	Close() error
}
