package server

import (
	"net/http"

	"sitemgr/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := s.bookmarkService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	files, err := s.blobs.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.InfoResponse{
		Version:   s.version,
		Bookmarks: len(bookmarks),
		Files:     len(files),
	})
}
