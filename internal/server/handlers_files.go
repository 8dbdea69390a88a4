package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"sitemgr/internal/api"
	"sitemgr/internal/models"
)

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.blobs.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if files == nil {
		files = []models.BlobInfo{}
	}
	s.writeJSON(w, http.StatusOK, api.FilesResponse{Files: files})
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.uploadLimiter, "upload", func() {
		r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxUploadBytes)
		if err := r.ParseMultipartForm(s.uploads.MultipartMaxMemory); err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingRequired))
			return
		}
		defer file.Close()

		result, err := s.blobs.Put(r.Context(), strings.TrimSpace(header.Filename), file)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		s.log().Debug("file uploaded", "file", result.Name, "size", result.Size)
		s.writeJSON(w, http.StatusOK, api.UploadResponse{
			OK:   true,
			File: api.UploadedFile{Name: result.Name, Size: result.Size},
		})
	})
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rc, info, err := s.blobs.Open(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}))
	if seeker, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Name, info.ModifiedAt.Time, seeker)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log().Warn("stream file", "file", info.Name, "error", err)
	}
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.attachmentService.DeleteBlob(r.Context(), name); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func classifyMultipartError(err error) error {
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return badRequestCode(fmt.Errorf("request body too large"), ErrCodeRequestTooLarge)
	}
	return badRequestCode(err, ErrCodeInvalidArgument)
}
