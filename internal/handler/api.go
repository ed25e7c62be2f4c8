package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"gridwarden/internal/codec"
	"gridwarden/internal/domain"
)

// ValidateRequest is a telemetry submission for one node
type ValidateRequest struct {
	NodeID    string                `json:"node_id"`
	Role      string                `json:"role"`
	Source    string                `json:"source,omitempty"`
	Telemetry *domain.TelemetrySpec `json:"telemetry"`
}

// ValidateNode validates submitted telemetry against the node's role.
// The default body is a JSON envelope; with node_id and role query
// parameters the body is bare telemetry in the format named by the
// format parameter.
func (h *AdmissionHandler) ValidateNode(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeValidateRequest(r)
	if err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, "Invalid role", err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.svc.Validate(r.Context(), req.NodeID, role, req.Source, req.Telemetry)
	if err != nil {
		if strings.Contains(err.Error(), "not declared") {
			h.writeError(w, "Unknown role", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.Contains(err.Error(), "required") {
			h.writeError(w, "Invalid request", err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Failed to validate node %s: %v", req.NodeID, err)
		h.writeError(w, "Failed to validate", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

func (h *AdmissionHandler) decodeValidateRequest(r *http.Request) (*ValidateRequest, error) {
	nodeID := r.URL.Query().Get("node_id")
	if nodeID != "" {
		// bare telemetry body
		tel, err := codec.DecoderFor(r.URL.Query().Get("format")).Decode(r.Body)
		if err != nil {
			return nil, err
		}
		return &ValidateRequest{
			NodeID:    nodeID,
			Role:      r.URL.Query().Get("role"),
			Source:    r.URL.Query().Get("source"),
			Telemetry: tel,
		}, nil
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequirements returns the full role-indexed requirement table
func (h *AdmissionHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Requirements(), http.StatusOK)
}

// GetRoleRequirements returns one role's requirement subtree
func (h *AdmissionHandler) GetRoleRequirements(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("role")
	role, err := domain.ParseRole(raw)
	if err != nil {
		h.writeError(w, "Invalid role", err.Error(), http.StatusBadRequest)
		return
	}

	req, err := h.svc.RoleRequirements(role)
	if err != nil {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}

	h.writeJSON(w, req, http.StatusOK)
}

// GetReports returns a node's admission history, newest first. The format
// query parameter selects json, yaml or text output; latest=true narrows
// the listing to the most recent verdict.
func (h *AdmissionHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("node_id")
	if nodeID == "" {
		h.writeError(w, "Invalid node ID", "Node ID is required", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	enc := codec.EncoderFor(format)

	if r.URL.Query().Get("latest") == "true" {
		report, err := h.svc.LatestReport(r.Context(), nodeID)
		if err != nil {
			log.Printf("Failed to get latest report for %s: %v", nodeID, err)
			h.writeError(w, "Failed to get report", err.Error(), http.StatusInternalServerError)
			return
		}
		if report == nil {
			h.writeError(w, "Not found", "node has no reports", http.StatusNotFound)
			return
		}
		writeEncoded(w, enc, func() error { return enc.Encode(report, w) })
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	reports, err := h.svc.Reports(r.Context(), nodeID, limit)
	if err != nil {
		log.Printf("Failed to list reports for %s: %v", nodeID, err)
		h.writeError(w, "Failed to list reports", err.Error(), http.StatusInternalServerError)
		return
	}

	writeEncoded(w, enc, func() error { return enc.EncodeList(reports, w) })
}

func writeEncoded(w http.ResponseWriter, enc codec.Encoder, write func() error) {
	switch enc.Format() {
	case "yaml":
		w.Header().Set("Content-Type", "application/x-yaml")
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	if err := write(); err != nil {
		// Headers are already sent, nothing more to do
		log.Printf("Failed to encode response: %v", err)
	}
}

// ProbeRequest names a host to measure independently
type ProbeRequest struct {
	Host string `json:"host"`
	Role string `json:"role"`
}

// Probe collects telemetry from a live host over SSH, validates it and
// returns the resulting report. The verdict carries the probed source so
// operators can tell measured facts from self-reported ones.
func (h *AdmissionHandler) Probe(w http.ResponseWriter, r *http.Request) {
	if h.prober == nil {
		h.writeError(w, "Prober not configured", "No probe adapter is registered", http.StatusServiceUnavailable)
		return
	}

	var req ProbeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Host == "" {
		h.writeError(w, "Host required", "Please provide a host to probe", http.StatusBadRequest)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, "Invalid role", err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.prober.ProbeAndValidate(r.Context(), req.Host, role)
	if err != nil {
		log.Printf("Probe of %s failed: %v", req.Host, err)
		h.writeError(w, "Probe failed", err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, report, http.StatusOK)
}

// Health reports server liveness and the loaded role count
func (h *AdmissionHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status": "ok",
		"roles":  len(h.svc.Requirements().Roles),
	}, http.StatusOK)
}
