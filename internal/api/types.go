package api

import "sitemgr/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// OKResponse acknowledges a mutation with no other payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse summarizes the server's stores.
type InfoResponse struct {
	Version   string `json:"version"`
	Bookmarks int    `json:"bookmarks"`
	Files     int    `json:"files"`
}

// FilesResponse lists stored blobs.
type FilesResponse struct {
	Files []models.BlobInfo `json:"files"`
}

// UploadedFile describes one stored upload.
type UploadedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	OK   bool         `json:"ok"`
	File UploadedFile `json:"file"`
}

// BookmarksResponse lists bookmarks.
type BookmarksResponse struct {
	Bookmarks []models.Bookmark `json:"bookmarks"`
}

// BookmarkResponse wraps a single bookmark.
type BookmarkResponse struct {
	Bookmark models.Bookmark `json:"bookmark"`
}

// BookmarkCreateRequest is the payload for POST /api/bookmarks.
type BookmarkCreateRequest struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags,omitempty"`
}

// BookmarkUpdateRequest is the payload for PUT /api/bookmarks/{id}.
// Absent fields are left unchanged.
type BookmarkUpdateRequest struct {
	Title *string   `json:"title,omitempty"`
	URL   *string   `json:"url,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

// AttachRequest is the payload for POST /api/bookmarks/{id}/attachments.
type AttachRequest struct {
	Filename string `json:"filename"`
}

// AttachmentsResponse returns a bookmark's attachment list after a change.
type AttachmentsResponse struct {
	Attachments []string `json:"attachments"`
}
