package store

import (
	"context"
	"errors"

	"sitemgr/internal/models"
)

var (
	// ErrNotFound is returned when no bookmark has the requested id.
	ErrNotFound = errors.New("bookmark not found")
	// ErrValidation is returned when a required bookmark field is missing.
	ErrValidation = errors.New("validation failed")
)

// BookmarkPatch carries the fields of an update. Nil fields are left untouched.
type BookmarkPatch struct {
	Title *string
	URL   *string
	Tags  *[]string
}

// MutateFunc changes the collection in place and reports whether anything changed.
type MutateFunc func(c *models.Collection) (bool, error)

// BookmarkStore abstracts the persisted bookmark collection.
type BookmarkStore interface {
	ReadAll(ctx context.Context) (models.Collection, error)
	Get(ctx context.Context, id string) (models.Bookmark, error)
	Create(ctx context.Context, title, url string, tags []string) (models.Bookmark, error)
	Update(ctx context.Context, id string, patch BookmarkPatch) (models.Bookmark, error)
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, fn MutateFunc) error
}

var _ BookmarkStore = (*JSONStore)(nil)
