package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gridwarden/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS admission_reports (
		id TEXT PRIMARY KEY,
		node_id TEXT NOT NULL,
		role TEXT NOT NULL,
		passed INTEGER NOT NULL,
		source TEXT NOT NULL DEFAULT 'reported',
		violations JSON,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_node ON admission_reports(node_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON admission_reports(created_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveReport stores a new admission report
func (r *Repository) SaveReport(ctx context.Context, report *domain.AdmissionReport) error {
	violations, err := marshalViolations(report.Violations)
	if err != nil {
		return fmt.Errorf("failed to marshal violations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admission_reports (id, node_id, role, passed, source, violations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.NodeID, string(report.Role), boolToInt(report.Passed), report.Source, violations, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by ID
func (r *Repository) GetReport(ctx context.Context, id string) (*domain.AdmissionReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, node_id, role, passed, source, violations, created_at
		FROM admission_reports
		WHERE id = ?
	`, id)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListReports returns a node's reports, newest first
func (r *Repository) ListReports(ctx context.Context, nodeID string, limit int) ([]*domain.AdmissionReport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, node_id, role, passed, source, violations, created_at
		FROM admission_reports
		WHERE node_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, nodeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*domain.AdmissionReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// LatestReport returns a node's most recent report
func (r *Repository) LatestReport(ctx context.Context, nodeID string) (*domain.AdmissionReport, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, node_id, role, passed, source, violations, created_at
		FROM admission_reports
		WHERE node_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, nodeID)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return report, nil
}

// PruneReports deletes reports older than the cutoff
func (r *Repository) PruneReports(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM admission_reports WHERE created_at < ?
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	return result.RowsAffected()
}

// Close releases the database handle
func (r *Repository) Close() error {
	return r.db.Close()
}
