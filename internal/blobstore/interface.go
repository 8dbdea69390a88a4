package blobstore

import (
	"context"
	"errors"
	"io"

	"sitemgr/internal/models"
)

var (
	// ErrNotFound is returned when no blob is stored under a name.
	ErrNotFound = errors.New("blob not found")
	// ErrInvalidName is returned for names that are not a single path element.
	ErrInvalidName = errors.New("invalid blob name")
)

// BlobPutResult describes one persisted blob payload.
type BlobPutResult struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// BlobStore is the byte-storage abstraction used by the file API and AttachmentService.
type BlobStore interface {
	List(ctx context.Context) ([]models.BlobInfo, error)
	Put(ctx context.Context, name string, r io.Reader) (BlobPutResult, error)
	Open(ctx context.Context, name string) (io.ReadCloser, models.BlobInfo, error)
	Stat(ctx context.Context, name string) (models.BlobInfo, error)
	Delete(ctx context.Context, name string) error
}

var _ BlobStore = (*LocalDir)(nil)
