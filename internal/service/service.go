// Package service orchestrates admission decisions: it holds the current
// requirement epoch, runs the validation engine, persists reports and
// publishes admission events.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gridwarden/internal/domain"
	"gridwarden/internal/engine"
	"gridwarden/internal/repository"
)

// AdmissionService validates participant telemetry against the current
// requirement table. The table is swapped atomically on reload; in-flight
// validations keep the epoch they started with.
type AdmissionService struct {
	mu     sync.RWMutex
	spec   *domain.RequirementSpec
	repo   repository.Repository
	events *EventBus
}

// NewAdmissionService creates an admission service around a loaded,
// validated requirement spec
func NewAdmissionService(spec *domain.RequirementSpec, repo repository.Repository, events *EventBus) *AdmissionService {
	return &AdmissionService{
		spec:   spec,
		repo:   repo,
		events: events,
	}
}

// Requirements returns the current requirement spec (read-only)
func (s *AdmissionService) Requirements() *domain.RequirementSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spec
}

// RoleRequirements resolves one role's requirement subtree
func (s *AdmissionService) RoleRequirements(role domain.Role) (*domain.RoleRequirements, error) {
	req, ok := s.Requirements().ForRole(role)
	if !ok {
		return nil, fmt.Errorf("role %q not declared in requirement spec", role)
	}
	return req, nil
}

// Reload swaps in a new requirement epoch. The table must already be
// validated by the loader; a nil spec is ignored.
func (s *AdmissionService) Reload(spec *domain.RequirementSpec) {
	if spec == nil {
		return
	}

	s.mu.Lock()
	s.spec = spec
	s.mu.Unlock()

	log.Printf("Requirement table reloaded (%d roles)", len(spec.Roles))
	s.publish(Event{Type: EventRequirementsReloaded, Payload: map[string]interface{}{
		"roles": len(spec.Roles),
	}})
}

// Validate runs the engine over one node's telemetry, persists the
// admission report and publishes the verdict. Validation-time deficiencies
// are data, not errors: the only error cases are an unknown role and a
// failed write.
func (s *AdmissionService) Validate(ctx context.Context, nodeID string, role domain.Role, source string, tel *domain.TelemetrySpec) (*domain.AdmissionReport, error) {
	if nodeID == "" {
		return nil, fmt.Errorf("node id is required")
	}
	if source == "" {
		source = domain.SourceReported
	}

	result, err := engine.Validate(role, s.Requirements(), tel)
	if err != nil {
		return nil, err
	}

	report := domain.NewAdmissionReport(nodeID, source, result)
	if s.repo != nil {
		if err := s.repo.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	eventType := EventNodeAdmitted
	if !result.Passed {
		eventType = EventNodeRejected
	}
	s.publish(Event{Type: eventType, Payload: report})

	log.Printf("Validated node %s as %s: passed=%v violations=%d source=%s",
		nodeID, role, result.Passed, len(result.Violations), source)

	return report, nil
}

// Reports returns a node's admission history, newest first
func (s *AdmissionService) Reports(ctx context.Context, nodeID string, limit int) ([]*domain.AdmissionReport, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListReports(ctx, nodeID, limit)
}

// LatestReport returns a node's most recent verdict, nil if never validated
func (s *AdmissionService) LatestReport(ctx context.Context, nodeID string) (*domain.AdmissionReport, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.LatestReport(ctx, nodeID)
}

func (s *AdmissionService) publish(event Event) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
