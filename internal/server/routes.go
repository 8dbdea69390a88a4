package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/info", s.handleInfo)

	// Files.
	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("POST /api/upload", s.handleUploadFile)
	mux.HandleFunc("GET /api/files/{name}", s.handleDownloadFile)
	mux.HandleFunc("DELETE /api/files/{name}", s.handleDeleteFile)

	// Bookmarks.
	mux.HandleFunc("GET /api/bookmarks", s.handleListBookmarks)
	mux.HandleFunc("POST /api/bookmarks", s.handleCreateBookmark)
	mux.HandleFunc("PUT /api/bookmarks/{id}", s.handleUpdateBookmark)
	mux.HandleFunc("DELETE /api/bookmarks/{id}", s.handleDeleteBookmark)

	// Bookmark attachments.
	mux.HandleFunc("POST /api/bookmarks/{id}/attachments", s.handleAttachFile)
	mux.HandleFunc("DELETE /api/bookmarks/{id}/attachments/{filename}", s.handleDetachFile)

	return mux
}
