package server

import (
	"net/http"
	"strings"

	"sitemgr/internal/api"
)

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := s.bookmarkService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.BookmarksResponse{Bookmarks: bookmarks})
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req api.BookmarkCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	bookmark, err := s.bookmarkService.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.BookmarkResponse{Bookmark: bookmark})
}

func (s *Server) handleUpdateBookmark(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var req api.BookmarkUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	bookmark, err := s.bookmarkService.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.BookmarkResponse{Bookmark: bookmark})
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.bookmarkService.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var req api.AttachRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	attachments, err := s.attachmentService.Attach(r.Context(), id, req.Filename)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.AttachmentsResponse{Attachments: attachments})
}

func (s *Server) handleDetachFile(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	attachments, err := s.attachmentService.Detach(r.Context(), id, r.PathValue("filename"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AttachmentsResponse{Attachments: attachments})
}
