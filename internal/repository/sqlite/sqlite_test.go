package sqlite

import (
	"context"
	"testing"
	"time"

	"gridwarden/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func testReport(nodeID string, passed bool, createdAt time.Time) *domain.AdmissionReport {
	report := domain.NewAdmissionReport(nodeID, domain.SourceReported, domain.ValidationResult{
		Role:   domain.RoleMiner,
		Passed: passed,
	})
	if !passed {
		report.Violations = []domain.Violation{
			{
				FieldPath: "gpu",
				Expected:  "present",
				Actual:    "absent",
				Reason:    domain.ReasonMissingCapability,
			},
		}
	}
	report.CreatedAt = createdAt
	return report
}

func TestSaveAndGetReport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	report := testReport("node-1", false, time.Now().UTC())
	if err := repo.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := repo.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got == nil {
		t.Fatal("expected report, got nil")
	}
	if got.NodeID != "node-1" {
		t.Errorf("NodeID = %q, want node-1", got.NodeID)
	}
	if got.Role != domain.RoleMiner {
		t.Errorf("Role = %q, want miner", got.Role)
	}
	if got.Passed {
		t.Error("Passed should be false")
	}
	if len(got.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got.Violations))
	}
	if got.Violations[0].Reason != domain.ReasonMissingCapability {
		t.Errorf("violation reason = %q", got.Violations[0].Reason)
	}
}

func TestGetReportNotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetReport(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestPassedReportHasNoViolations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	report := testReport("node-2", true, time.Now().UTC())
	if err := repo.SaveReport(ctx, report); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Passed {
		t.Error("Passed should be true")
	}
	if len(got.Violations) != 0 {
		t.Errorf("expected no violations, got %+v", got.Violations)
	}
}

func TestListReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		report := testReport("node-3", i%2 == 0, base.Add(time.Duration(i)*time.Minute))
		if err := repo.SaveReport(ctx, report); err != nil {
			t.Fatal(err)
		}
	}
	// another node's reports must not leak into the listing
	if err := repo.SaveReport(ctx, testReport("node-4", true, base)); err != nil {
		t.Fatal(err)
	}

	reports, err := repo.ListReports(ctx, "node-3", 3)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}

	// newest first
	for i := 1; i < len(reports); i++ {
		if reports[i].CreatedAt.After(reports[i-1].CreatedAt) {
			t.Error("reports should be ordered newest first")
		}
	}
	for _, r := range reports {
		if r.NodeID != "node-3" {
			t.Errorf("unexpected node %q in listing", r.NodeID)
		}
	}
}

func TestLatestReport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	old := testReport("node-5", false, base)
	newer := testReport("node-5", true, base.Add(30*time.Minute))
	if err := repo.SaveReport(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveReport(ctx, newer); err != nil {
		t.Fatal(err)
	}

	got, err := repo.LatestReport(ctx, "node-5")
	if err != nil {
		t.Fatalf("LatestReport: %v", err)
	}
	if got == nil {
		t.Fatal("expected report")
	}
	if got.ID != newer.ID {
		t.Errorf("latest = %q, want %q", got.ID, newer.ID)
	}

	none, err := repo.LatestReport(ctx, "node-unknown")
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Errorf("expected nil for unknown node, got %+v", none)
	}
}

func TestPruneReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.SaveReport(ctx, testReport("node-6", true, now.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveReport(ctx, testReport("node-6", true, now.Add(-30*time.Minute))); err != nil {
		t.Fatal(err)
	}

	pruned, err := repo.PruneReports(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneReports: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	remaining, err := repo.ListReports(ctx, "node-6", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Errorf("expected 1 remaining report, got %d", len(remaining))
	}
}
