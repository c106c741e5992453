package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/log"
)

// handleListCategories returns the picker options, standard categories
// first.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	opts, err := s.svc.Categories.Options(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentCategories, log.OpList)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, log.ComponentCategories, log.OpCreate)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), auth.OwnerFromContext(r.Context()), sanitizeInput(req.Label))
	if err != nil {
		writeServiceError(w, r, err, log.ComponentCategories, log.OpCreate)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Remove(r.Context(), auth.OwnerFromContext(r.Context()), r.PathValue("value")); err != nil {
		writeServiceError(w, r, err, log.ComponentCategories, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
