package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sitemgr/internal/api"
	"sitemgr/internal/auth"
)

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("http://127.0.0.1:7333")
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:7333" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		_, err := ListenAddr("http://0.0.0.0:7333")
		if err == nil {
			t.Fatal("expected error for non-loopback listen host")
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("http://0.0.0.0:7333")
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:7333" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})
}

func TestListenAddrLocalhostAndBareHostPort(t *testing.T) {
	t.Setenv(allowRemoteEnvKey, "")
	if _, err := ListenAddr("http://localhost:3000"); err != nil {
		t.Fatalf("expected localhost to be allowed: %v", err)
	}
	if _, err := ListenAddr("10.0.0.5:3000"); err == nil {
		t.Fatal("expected bare remote host:port to be blocked")
	}
	if _, err := ListenAddr(""); err == nil {
		t.Fatal("expected error for empty api url")
	}
}

func TestWithAuth(t *testing.T) {
	hash, err := auth.HashToken("test-token-0123456789")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "denies missing auth", path: "/api/bookmarks", wantStatus: http.StatusUnauthorized},
		{name: "denies wrong token", path: "/api/bookmarks", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "denies wrong scheme", path: "/api/bookmarks", header: "Basic test-token-0123456789", wantStatus: http.StatusUnauthorized},
		{name: "allows valid auth", path: "/api/bookmarks", header: "Bearer test-token-0123456789", wantStatus: http.StatusNoContent},
		{name: "health stays open", path: "/health", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &Server{tokenHash: hash}
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.withAuth(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusUnauthorized {
				if !nextCalled {
					t.Fatal("next handler should be called")
				}
				return
			}
			if nextCalled {
				t.Fatal("next handler should not be called")
			}
			var errResp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.ErrorCode != ErrCodeUnauthorized {
				t.Fatalf("expected error_code %d, got %d", ErrCodeUnauthorized, errResp.ErrorCode)
			}
		})
	}

	t.Run("disabled without hash", func(t *testing.T) {
		srv := &Server{}
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		w := httptest.NewRecorder()
		srv.withAuth(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
	})
}

func TestWithCORS(t *testing.T) {
	srv := &Server{}
	nextCalled := false
	handler := srv.withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", w.Code)
	}
	if nextCalled {
		t.Fatal("preflight should not reach next handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != corsAllowMethods {
		t.Fatalf("unexpected allow methods %q", got)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil))
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if !nextCalled {
		t.Fatal("expected next handler for GET")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := &Server{}
	handler := srv.withRequestLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.Header.Set(requestIDHeader, "client-id-1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "client-id-1" {
		t.Fatalf("expected client request id echoed, got %q", got)
	}
}
