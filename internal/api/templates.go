package api

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
	"git.home.luguber.info/inful/rendergate/internal/logfields"
)

// templateResponse is the add/remove reply shape.
type templateResponse struct {
	Message string `json:"message"`
	FileID  string `json:"fileId"`
}

// writeCatalogError maps a catalog failure onto the wire: validation
// errors surface with their message, everything else is a 500 with a
// generic body and the detail logged server-side.
func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	var gerr *gerrors.GatewayError
	if stderrors.As(err, &gerr) && gerr.HTTPStatus() < 500 {
		writeError(w, gerr.HTTPStatus(), gerr.Message)
		return
	}
	slog.Error("template storage failed",
		logfields.Method(r.Method),
		logfields.Path(r.URL.Path),
		logfields.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "template storage failed")
}

// handleTemplateAdd stores an uploaded template in the catalog. The
// optional fileId form field overrides the upload's own filename as the
// catalog identifier.
func (s *Server) handleTemplateAdd(w http.ResponseWriter, r *http.Request) {
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

	id := r.FormValue("fileId")
	if id == "" {
		id = header.Filename
	}

	if err := s.opts.Catalog.Add(id, content); err != nil {
		writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, templateResponse{
		Message: "template stored",
		FileID:  id,
	})
}

// handleTemplateRemove deletes a catalog template. Removing an id that
// does not exist is not an error.
func (s *Server) handleTemplateRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileId")

	if err := s.opts.Catalog.Remove(id); err != nil {
		writeCatalogError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, templateResponse{
		Message: "template removed",
		FileID:  id,
	})
}

func (s *Server) handleTemplateList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.opts.Catalog.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    infos,
		Count:   len(infos),
	})
}
