package server

import (
	"context"
	"fmt"

	"sitemgr/internal/api"
	"sitemgr/internal/models"
	"sitemgr/internal/store"
)

// BookmarkService maps bookmark store results onto API errors.
type BookmarkService struct {
	store store.BookmarkStore
}

// NewBookmarkService constructs a BookmarkService.
func NewBookmarkService(st store.BookmarkStore) *BookmarkService {
	return &BookmarkService{store: st}
}

// List returns every bookmark in document order.
func (s *BookmarkService) List(ctx context.Context) ([]models.Bookmark, error) {
	if s == nil || s.store == nil {
		return nil, internalError(fmt.Errorf("bookmark service is not configured"))
	}
	c, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, classifyError(err)
	}
	return c.Bookmarks, nil
}

// Create creates a bookmark from a request.
func (s *BookmarkService) Create(ctx context.Context, req api.BookmarkCreateRequest) (models.Bookmark, error) {
	if s == nil || s.store == nil {
		return models.Bookmark{}, internalError(fmt.Errorf("bookmark service is not configured"))
	}
	b, err := s.store.Create(ctx, req.Title, req.URL, req.Tags)
	if err != nil {
		return models.Bookmark{}, classifyError(err)
	}
	return b, nil
}

// Update applies the present request fields to one bookmark.
func (s *BookmarkService) Update(ctx context.Context, id string, req api.BookmarkUpdateRequest) (models.Bookmark, error) {
	if s == nil || s.store == nil {
		return models.Bookmark{}, internalError(fmt.Errorf("bookmark service is not configured"))
	}
	b, err := s.store.Update(ctx, id, store.BookmarkPatch{Title: req.Title, URL: req.URL, Tags: req.Tags})
	if err != nil {
		return models.Bookmark{}, classifyError(err)
	}
	return b, nil
}

// Delete removes one bookmark. Attached files are left in place.
func (s *BookmarkService) Delete(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return internalError(fmt.Errorf("bookmark service is not configured"))
	}
	return classifyError(s.store.Delete(ctx, id))
}
