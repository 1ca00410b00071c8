package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reactome/gsa-orchestrator/internal/jobservice"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

// writeError maps a jobservice error kind to the HTTP status spec.md §7
// assigns it and writes the message as plain text.
func writeError(w http.ResponseWriter, err error) {
	var valErr *jobservice.ValidationError
	if errors.As(err, &valErr) {
		writeText(w, valErr.Code, valErr.Message)
		return
	}

	var admitErr *jobservice.AdmissionError
	if errors.As(err, &admitErr) {
		writeText(w, http.StatusServiceUnavailable, admitErr.Message)
		return
	}

	var infraErr *jobservice.InfrastructureError
	if errors.As(err, &infraErr) {
		writeText(w, http.StatusServiceUnavailable, infraErr.Message)
		return
	}

	writeText(w, http.StatusInternalServerError, err.Error())
}
