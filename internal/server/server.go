package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"sitemgr/internal/blobstore"
	"sitemgr/internal/store"
)

const (
	allowRemoteEnvKey      = "SITEMGR_ALLOW_REMOTE"
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 30 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	uploadConcurrencyLimit = 4

	defaultMaxUploadBytes     int64 = 100 << 20 // 100 MiB
	defaultMultipartMaxMemory int64 = 8 << 20   // 8 MiB
)

// UploadOptions bounds multipart file uploads.
type UploadOptions struct {
	MaxUploadBytes     int64
	MultipartMaxMemory int64
}

// Server wraps HTTP handlers for the site manager API.
type Server struct {
	addr              string
	bookmarks         store.BookmarkStore
	blobs             blobstore.BlobStore
	bookmarkService   *BookmarkService
	attachmentService *AttachmentService
	logger            *slog.Logger
	tokenHash         string
	version           string
	uploads           UploadOptions
	uploadLimiter     chan struct{}
}

// New creates a new server instance.
func New(addr string, bookmarks store.BookmarkStore, blobs blobstore.BlobStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:              addr,
		bookmarks:         bookmarks,
		blobs:             blobs,
		bookmarkService:   NewBookmarkService(bookmarks),
		attachmentService: NewAttachmentService(bookmarks, blobs, logger),
		logger:            logger,
		version:           "dev",
		uploads: UploadOptions{
			MaxUploadBytes:     defaultMaxUploadBytes,
			MultipartMaxMemory: defaultMultipartMaxMemory,
		},
		uploadLimiter: make(chan struct{}, uploadConcurrencyLimit),
	}
}

// ConfigureUploadOptions overrides upload limits. Non-positive values keep defaults.
func (s *Server) ConfigureUploadOptions(opts UploadOptions) {
	if opts.MaxUploadBytes > 0 {
		s.uploads.MaxUploadBytes = opts.MaxUploadBytes
	}
	if opts.MultipartMaxMemory > 0 {
		s.uploads.MultipartMaxMemory = opts.MultipartMaxMemory
	}
}

// ConfigureAuth enables bearer token checks on /api/ routes when tokenHash is
// a non-empty bcrypt hash.
func (s *Server) ConfigureAuth(tokenHash string) {
	s.tokenHash = strings.TrimSpace(tokenHash)
}

// ConfigureVersion sets the build version reported by /api/info.
func (s *Server) ConfigureVersion(version string) {
	if v := strings.TrimSpace(version); v != "" {
		s.version = v
	}
}

// Handler returns the routed API wrapped in the server middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withCORS(s.withAuth(s.routes())))
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr, "auth", s.tokenHash != "")
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
