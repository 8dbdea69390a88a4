package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sitemgr/internal/blobstore"
	"sitemgr/internal/store"
)

type testEnv struct {
	srv       *Server
	bookmarks *store.JSONStore
	blobs     *blobstore.LocalDir
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bookmarks, err := store.Open(filepath.Join(root, "data", store.DefaultFileName), logger)
	if err != nil {
		t.Fatalf("open bookmark store: %v", err)
	}
	blobs, err := blobstore.NewLocalDir(filepath.Join(root, "uploads"))
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}

	srv := New("127.0.0.1:0", bookmarks, blobs, logger)
	return &testEnv{srv: srv, bookmarks: bookmarks, blobs: blobs, handler: srv.Handler()}
}

func (e *testEnv) putBlob(t *testing.T, name, content string) {
	t.Helper()
	if _, err := e.blobs.Put(context.Background(), name, strings.NewReader(content)); err != nil {
		t.Fatalf("put blob %s: %v", name, err)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, field, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
