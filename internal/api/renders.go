package api

import (
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/rendergate/internal/history"
)

// handleRenderHistory returns recent render records, newest first. The
// limit query parameter caps the count; the store applies its default
// when it is absent or unparseable.
func (s *Server) handleRenderHistory(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSON(w, http.StatusOK, Response{Success: true, Data: []history.Record{}})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read render history")
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
		Count:   len(records),
	})
}
