package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

func (s *Server) handlePostDataLoad(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resource_id")
	ctx := r.Context()

	var params []model.Parameter
	data, err := readBody(r)
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &params)
	}

	loadID, err := s.dataset.Admit(ctx, resourceID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, loadID)
}

func (s *Server) handleDataStatus(w http.ResponseWriter, r *http.Request) {
	loadingID := chi.URLParam(r, "loading_id")

	job, err := s.store.GetJob(r.Context(), loadingID)
	if err != nil {
		writeText(w, http.StatusNotFound, "loading job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}
