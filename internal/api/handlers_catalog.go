package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reactome/gsa-orchestrator/internal/methodcatalog"
)

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, methodcatalog.Methods)
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, methodcatalog.DataTypes)
}

func (s *Server) handleDataSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, methodcatalog.Sources)
}

func (s *Server) handleDataExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, methodcatalog.Examples)
}

// handleDataSearch serves the search facet described in spec.md §4.6,
// ranking bundled example dataset ids against a free-text query.
func (s *Server) handleDataSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if s.index == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	writeJSON(w, http.StatusOK, s.index.Search(query))
}

func (s *Server) handleDataSummary(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "dataset_id")

	ds, err := s.store.GetDataset(r.Context(), datasetID)
	if err != nil {
		writeText(w, http.StatusNotFound, "dataset not found")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}
