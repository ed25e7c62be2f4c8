// Package handler implements HTTP request handlers for the Gridwarden API.
//
// This package provides the HTTP layer for the admission REST API, handling
// telemetry validation requests, requirement lookups, report history, and
// probe triggers.
//
// # Handlers
//
// AdmissionHandler covers validation, requirement inspection and report
// retrieval. Probing is delegated to a registered NodeProber; without one
// the probe endpoint answers 503.
//
// # API Design
//
// All handlers follow REST conventions:
// - GET for retrieval
// - POST for validation and probe triggers
//
// Errors are returned as JSON with appropriate HTTP status codes.
// Request bodies are validated before processing.
//
// # Response Format
//
// Success responses return JSON by default; report endpoints also accept
// format=yaml and format=text. Error responses return JSON with an
// {error, details} structure.
//
// # Server-Sent Events
//
// The /api/events endpoint streams admission events via SSE, allowing
// operators to watch verdicts and requirement reloads live.
package handler
