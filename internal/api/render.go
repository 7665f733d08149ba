package api

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
	"git.home.luguber.info/inful/rendergate/internal/logfields"
	"git.home.luguber.info/inful/rendergate/internal/render"
)

// maxRenderBody caps the multipart form size for a render request.
const maxRenderBody = 64 << 20

// handleRender accepts a multipart form carrying the template file plus
// the optional data, options, formatters and email fields, runs the
// pipeline, and answers according to the outcome's delivery mode.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRenderBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("template")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing required field: template")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read template upload")
		return
	}

	// Spool the upload to disk for the lifetime of the request. The
	// janitor sweeps anything this deferred remove misses.
	if s.opts.SpoolDir != "" {
		spooled := filepath.Join(s.opts.SpoolDir, uuid.NewString()+filepath.Ext(header.Filename))
		if err := os.WriteFile(spooled, content, 0o644); err == nil {
			defer os.Remove(spooled)
		} else {
			slog.Warn("spool write failed", logfields.Path(spooled), logfields.Error(err))
		}
	}

	req := render.Request{
		RequestID:     middleware.GetReqID(r.Context()),
		Template:      content,
		Filename:      header.Filename,
		RawData:       []byte(r.FormValue("data")),
		RawOptions:    []byte(r.FormValue("options")),
		RawFormatters: []byte(r.FormValue("formatters")),
		RawEmail:      []byte(r.FormValue("email")),
	}

	outcome, err := s.opts.Pipeline.Handle(r.Context(), req)
	if err != nil {
		var gerr *gerrors.GatewayError
		if stderrors.As(err, &gerr) && gerr.HTTPStatus() < 500 {
			writeError(w, gerr.HTTPStatus(), gerr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	switch outcome.Mode {
	case render.DeliveryStored:
		w.Header().Set("Location", "/files/"+outcome.Hash)
		w.Header().Set("X-Report-Name", outcome.OutputName)
		w.WriteHeader(http.StatusMovedPermanently)
	default:
		w.Header().Set("Content-Disposition", `attachment; filename=`+outcome.OutputName)
		w.Header().Set("Content-Transfer-Encoding", "binary")
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Report-Name", outcome.OutputName)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(outcome.Body)
	}
}
