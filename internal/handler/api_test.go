package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gridwarden/internal/domain"
	"gridwarden/internal/service"
)

func testMux(t *testing.T, h *AdmissionHandler) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/validate", h.ValidateNode)
	mux.HandleFunc("GET /api/requirements", h.GetRequirements)
	mux.HandleFunc("GET /api/requirements/{role}", h.GetRoleRequirements)
	mux.HandleFunc("GET /api/reports/{node_id}", h.GetReports)
	mux.HandleFunc("POST /api/probe", h.Probe)
	mux.HandleFunc("GET /api/health", h.Health)
	return mux
}

func testHandler(t *testing.T) *AdmissionHandler {
	t.Helper()
	spec := &domain.RequirementSpec{
		Roles: map[domain.Role]*domain.RoleRequirements{
			domain.RoleMiner: {
				CPU: domain.CPURequirements{MinCores: domain.MinCount(4)},
			},
			domain.RoleValidator: {},
		},
	}
	svc := service.NewAdmissionService(spec, nil, nil)
	return NewAdmissionHandler(svc)
}

func TestValidateNodeEnvelope(t *testing.T) {
	mux := testMux(t, testHandler(t))

	body := `{"node_id": "node-1", "role": "miner", "telemetry": {"cpu": {"cores": 8}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report domain.AdmissionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !report.Passed {
		t.Errorf("expected pass, got %+v", report.Violations)
	}
	if report.NodeID != "node-1" {
		t.Errorf("NodeID = %q", report.NodeID)
	}
}

func TestValidateNodeRejection(t *testing.T) {
	mux := testMux(t, testHandler(t))

	body := `{"node_id": "node-2", "role": "miner", "telemetry": {"cpu": {"cores": 2}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report domain.AdmissionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Passed {
		t.Error("expected rejection")
	}
	if len(report.Violations) != 1 || report.Violations[0].FieldPath != "cpu.min_cores" {
		t.Errorf("unexpected violations: %+v", report.Violations)
	}
}

func TestValidateNodeBareYAML(t *testing.T) {
	mux := testMux(t, testHandler(t))

	body := "cpu:\n  cores: 16\n"
	req := httptest.NewRequest(http.MethodPost, "/api/validate?node_id=node-3&role=miner&format=yaml", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report domain.AdmissionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if !report.Passed {
		t.Errorf("expected pass, got %+v", report.Violations)
	}
}

func TestValidateNodeBadRole(t *testing.T) {
	mux := testMux(t, testHandler(t))

	body := `{"node_id": "node-4", "role": "overlord", "telemetry": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestValidateNodeBadBody(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetRoleRequirements(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/requirements/miner", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got domain.RoleRequirements
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/requirements/overlord", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown role status = %d, want 400", rec.Code)
	}
}

func TestGetReportsLatestNotFound(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/node-x?latest=true", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetReportsBadLimit(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/node-x?limit=many", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type fakeProber struct {
	report *domain.AdmissionReport
	err    error
}

func (f *fakeProber) ProbeAndValidate(ctx context.Context, host string, role domain.Role) (*domain.AdmissionReport, error) {
	return f.report, f.err
}

func TestProbeWithoutProber(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader(`{"host": "10.0.0.5", "role": "miner"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestProbe(t *testing.T) {
	h := testHandler(t)
	h.SetProber(&fakeProber{
		report: domain.NewAdmissionReport("10.0.0.5", domain.SourceProbed, domain.ValidationResult{
			Role:   domain.RoleMiner,
			Passed: true,
		}),
	})
	mux := testMux(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader(`{"host": "10.0.0.5", "role": "miner"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var report domain.AdmissionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Source != domain.SourceProbed {
		t.Errorf("Source = %q, want probed", report.Source)
	}
}

func TestProbeRequiresHost(t *testing.T) {
	h := testHandler(t)
	h.SetProber(&fakeProber{})
	mux := testMux(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/probe", strings.NewReader(`{"role": "miner"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	mux := testMux(t, testHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["roles"] != float64(2) {
		t.Errorf("roles = %v, want 2", body["roles"])
	}
}
