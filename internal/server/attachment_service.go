package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sitemgr/internal/blobstore"
	"sitemgr/internal/models"
	"sitemgr/internal/store"
)

// ErrNotAttached is returned when detaching a file the bookmark does not reference.
var ErrNotAttached = errors.New("attachment not found")

// AttachmentService keeps bookmark attachment lists consistent with the blob store.
//
// Attachments are weak references by file name. Attach checks that the file
// exists once, then writes; a concurrent delete can still land between the two
// steps. DeleteBlob removes the file first and then strips the name from every
// bookmark, so readers may briefly see a dangling name.
type AttachmentService struct {
	bookmarks store.BookmarkStore
	blobs     blobstore.BlobStore
	logger    *slog.Logger
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(bookmarks store.BookmarkStore, blobs blobstore.BlobStore, logger *slog.Logger) *AttachmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttachmentService{bookmarks: bookmarks, blobs: blobs, logger: logger}
}

// Attach adds blobName to the bookmark's attachments. Attaching a name that is
// already present is a no-op.
func (s *AttachmentService) Attach(ctx context.Context, bookmarkID, blobName string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(blobName) == "" {
		return nil, badRequestCode(fmt.Errorf("filename is required"), ErrCodeMissingRequired)
	}

	var attachments []string
	err := s.bookmarks.Mutate(ctx, func(c *models.Collection) (bool, error) {
		idx := c.Index(bookmarkID)
		if idx < 0 {
			return false, notFoundCode(fmt.Errorf("%s: %w", bookmarkID, store.ErrNotFound), ErrCodeBookmarkNotFound)
		}
		if _, err := s.blobs.Stat(ctx, blobName); err != nil {
			return false, classifyError(err)
		}
		b := &c.Bookmarks[idx]
		changed := b.AddAttachment(blobName)
		attachments = append([]string{}, b.Attachments...)
		return changed, nil
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return attachments, nil
}

// Detach removes blobName from the bookmark's attachments. Detaching a name
// that is not attached is an error.
func (s *AttachmentService) Detach(ctx context.Context, bookmarkID, blobName string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var attachments []string
	err := s.bookmarks.Mutate(ctx, func(c *models.Collection) (bool, error) {
		idx := c.Index(bookmarkID)
		if idx < 0 {
			return false, notFoundCode(fmt.Errorf("%s: %w", bookmarkID, store.ErrNotFound), ErrCodeBookmarkNotFound)
		}
		b := &c.Bookmarks[idx]
		if !b.RemoveAttachment(blobName) {
			return false, notFoundCode(fmt.Errorf("%s: %w", blobName, ErrNotAttached), ErrCodeAttachmentNotFound)
		}
		attachments = append([]string{}, b.Attachments...)
		return true, nil
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return attachments, nil
}

// CascadeBlobDelete strips blobName from every bookmark and reports how many
// bookmarks changed. The document is rewritten only when at least one did.
func (s *AttachmentService) CascadeBlobDelete(ctx context.Context, blobName string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	modified := 0
	err := s.bookmarks.Mutate(ctx, func(c *models.Collection) (bool, error) {
		for i := range c.Bookmarks {
			if c.Bookmarks[i].RemoveAttachment(blobName) {
				modified++
			}
		}
		return modified > 0, nil
	})
	if err != nil {
		return 0, classifyError(err)
	}
	return modified, nil
}

// DeleteBlob deletes the file and then cascades the removal to bookmarks.
func (s *AttachmentService) DeleteBlob(ctx context.Context, blobName string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if err := s.blobs.Delete(ctx, blobName); err != nil {
		return 0, classifyError(err)
	}

	modified, err := s.CascadeBlobDelete(ctx, blobName)
	if err != nil {
		s.logger.Error("cascade blob delete", "file", blobName, "error", err)
		return 0, err
	}
	if modified > 0 {
		s.logger.Debug("detached deleted file", "file", blobName, "bookmarks", modified)
	}
	return modified, nil
}

func (s *AttachmentService) ready() error {
	if s == nil || s.bookmarks == nil || s.blobs == nil {
		return internalError(fmt.Errorf("attachment service is not configured"))
	}
	return nil
}
