// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/whistle-consult/pkg/types"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "ok",
		APIKeySet: s.status.APIKeySet,
		Model:     s.status.Model,
		Documents: s.status.Documents,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	reply := s.svc.Chat(r.Context(), req.Messages)
	writeJSON(w, http.StatusOK, types.ChatResponse{Reply: reply})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req types.ReportRequest
	if !s.decode(w, r, &req) {
		return
	}
	draft := s.svc.GenerateReport(r.Context(), req.Messages)
	writeJSON(w, http.StatusOK, types.ReportResponse{Report: draft})
}

// decode reads and validates a JSON body into v. On failure it writes the
// error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}

	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "invalid_request",
				Message: "request validation failed",
				Fields:  fieldErrors(verrs),
			})
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

// fieldErrors maps validator failures to readable messages keyed by the
// namespaced field, e.g. "ChatRequest.Messages[0].Role".
func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[fe.Namespace()] = fmt.Sprintf("%s is required", field)
		case "oneof":
			fields[fe.Namespace()] = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
		case "max":
			fields[fe.Namespace()] = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		default:
			fields[fe.Namespace()] = fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
		}
	}
	return fields
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
