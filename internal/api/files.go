package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/rendergate/internal/storage"
)

// handleFileRetrieval serves a stored artifact by hash. Anything that is
// not a resolvable hash answers 404; the route never reveals whether the
// store itself is configured.
func (s *Server) handleFileRetrieval(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	hash := chi.URLParam(r, "hash")
	if !s.opts.Store.IsHash(hash) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	content, err := s.opts.Store.Open(hash)
	if err != nil {
		if storage.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
