package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/validate"
)

// readBody accepts either plain JSON or gzip-compressed JSON, per spec.md
// §4.1 step 1, detecting gzip either from Content-Encoding or the gzip
// magic bytes (some clients set the header, some just send the stream).
func readBody(r *http.Request) ([]byte, error) {
	body := r.Body
	defer body.Close()

	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}

	peek := make([]byte, 2)
	n, _ := io.ReadFull(body, peek)
	rest, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	data := append(peek[:n], rest...)

	if n == 2 && peek[0] == 0x1f && peek[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}

	return data, nil
}

func (s *Server) handlePostAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := readBody(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	var input model.AnalysisInput
	if err := json.Unmarshal(data, &input); err != nil {
		writeText(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	normalized, err := validate.AnalysisInput(input)
	if err != nil {
		writeError(w, err)
		return
	}

	wantReport, wantEmail, recipient := jobservice.CommonFlags(normalized.Parameters)

	jobID, err := s.analysis.Admit(ctx, normalized, wantReport, wantEmail, recipient)
	if err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, jobID)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		writeText(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.store.GetReportJob(r.Context(), id)
	if err != nil {
		writeText(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleReportArtifact streams one named report artifact back to the
// client, the "API endpoints that stream the bytes" referenced to by
// ReportStatus.reports[].url per spec.md §4.4.
func (s *Server) handleReportArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := chi.URLParam(r, "name")
	ctx := r.Context()

	job, err := s.store.GetReportJob(ctx, id)
	if err != nil {
		writeText(w, http.StatusNotFound, "report not found")
		return
	}

	var mimetype string
	for _, a := range job.Reports {
		if a.Name == name {
			mimetype = a.Mimetype
			break
		}
	}
	if mimetype == "" {
		writeText(w, http.StatusNotFound, "artifact not found")
		return
	}

	data, err := s.store.GetReportArtifact(ctx, id, name)
	if err != nil {
		writeText(w, http.StatusNotFound, "artifact not found")
		return
	}

	w.Header().Set("Content-Type", mimetype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		writeText(w, http.StatusNotFound, "job not found")
		return
	}

	switch job.State {
	case model.StateComplete:
		data, err := s.store.GetResult(ctx, id)
		if err != nil {
			writeText(w, http.StatusNotFound, "result not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case model.StateRunning:
		writeText(w, http.StatusNotAcceptable, "analysis still running")
	default:
		writeText(w, http.StatusNotAcceptable, "analysis failed")
	}
}
