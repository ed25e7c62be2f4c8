package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"gridwarden/internal/domain"
	"gridwarden/internal/service"
)

// NodeProber collects telemetry from a live host and validates it
type NodeProber interface {
	ProbeAndValidate(ctx context.Context, host string, role domain.Role) (*domain.AdmissionReport, error)
}

// AdmissionHandler handles admission API requests
type AdmissionHandler struct {
	svc    *service.AdmissionService
	prober NodeProber
}

// NewAdmissionHandler creates a new admission handler
func NewAdmissionHandler(svc *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{svc: svc}
}

// SetProber registers the probe adapter
func (h *AdmissionHandler) SetProber(p NodeProber) {
	h.prober = p
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *AdmissionHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *AdmissionHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
