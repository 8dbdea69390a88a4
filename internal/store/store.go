package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"sitemgr/internal/models"
)

// DefaultFileName is the bookmark document name inside the data directory.
const DefaultFileName = "bookmarks.json"

// renameFile is swapped in tests to simulate a failed replace.
var renameFile = os.Rename

// JSONStore keeps the bookmark collection as one JSON document on disk.
//
// Every mutation reads the whole document, changes it in memory and writes the
// whole document back through a temp file and rename. The mutex serializes
// mutations made through one JSONStore value only: another process, or another
// JSONStore opened on the same path, still races and the last write wins.
type JSONStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

// Open returns a store for the document at path, seeding an empty document
// when none exists yet.
func Open(path string, logger *slog.Logger) (*JSONStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("bookmark file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &JSONStore{path: abs, logger: logger, now: time.Now}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		if err := s.write(models.NewCollection()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the absolute document path.
func (s *JSONStore) Path() string {
	return s.path
}

// ReadAll returns the full collection. A missing or unparsable document yields
// an empty collection rather than an error.
func (s *JSONStore) ReadAll(ctx context.Context) (models.Collection, error) {
	if err := ctx.Err(); err != nil {
		return models.Collection{}, err
	}
	c, _ := s.load()
	return c, nil
}

// Get returns one bookmark by id.
func (s *JSONStore) Get(ctx context.Context, id string) (models.Bookmark, error) {
	c, err := s.ReadAll(ctx)
	if err != nil {
		return models.Bookmark{}, err
	}
	idx := c.Index(id)
	if idx < 0 {
		return models.Bookmark{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return c.Bookmarks[idx], nil
}

// Create validates and appends a new bookmark.
func (s *JSONStore) Create(ctx context.Context, title, url string, tags []string) (models.Bookmark, error) {
	title = strings.TrimSpace(title)
	url = models.NormalizeURL(url)
	if title == "" || url == "" {
		return models.Bookmark{}, fmt.Errorf("title and url are required: %w", ErrValidation)
	}

	var created models.Bookmark
	err := s.Mutate(ctx, func(c *models.Collection) (bool, error) {
		id, err := GenerateBookmarkID(func(candidate string) (bool, error) {
			return c.Has(candidate), nil
		})
		if err != nil {
			return false, err
		}
		created = models.Bookmark{
			ID:          id,
			Title:       title,
			URL:         url,
			Tags:        models.NormalizeTags(tags),
			Attachments: []string{},
			CreatedAt:   models.NewTimestamp(s.now()),
		}
		c.Bookmarks = append(c.Bookmarks, created)
		return true, nil
	})
	if err != nil {
		return models.Bookmark{}, err
	}
	return created.Clone(), nil
}

// Update merges the present patch fields over an existing bookmark.
// Attachments are never changed here.
func (s *JSONStore) Update(ctx context.Context, id string, patch BookmarkPatch) (models.Bookmark, error) {
	var updated models.Bookmark
	err := s.Mutate(ctx, func(c *models.Collection) (bool, error) {
		idx := c.Index(id)
		if idx < 0 {
			return false, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		b := c.Bookmarks[idx]
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return false, fmt.Errorf("title must not be empty: %w", ErrValidation)
			}
			b.Title = title
		}
		if patch.URL != nil {
			url := models.NormalizeURL(*patch.URL)
			if url == "" {
				return false, fmt.Errorf("url must not be empty: %w", ErrValidation)
			}
			b.URL = url
		}
		if patch.Tags != nil {
			b.Tags = models.NormalizeTags(*patch.Tags)
		}
		c.Bookmarks[idx] = b
		updated = b
		return true, nil
	})
	if err != nil {
		return models.Bookmark{}, err
	}
	return updated.Clone(), nil
}

// Delete removes one bookmark.
func (s *JSONStore) Delete(ctx context.Context, id string) error {
	return s.Mutate(ctx, func(c *models.Collection) (bool, error) {
		idx := c.Index(id)
		if idx < 0 {
			return false, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		c.Bookmarks = append(c.Bookmarks[:idx], c.Bookmarks[idx+1:]...)
		return true, nil
	})
}

// Mutate runs one read-modify-write cycle. The document is only rewritten when
// fn reports a change and returns no error.
func (s *JSONStore) Mutate(ctx context.Context, fn MutateFunc) error {
	if fn == nil {
		return fmt.Errorf("mutate func is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := s.load()
	if err != nil {
		var parseErr *parseError
		if !errors.As(err, &parseErr) {
			return err
		}
		s.quarantine()
	}

	changed, err := fn(&c)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.write(c)
}

type parseError struct {
	err error
}

func (e *parseError) Error() string {
	return "parse bookmark document: " + e.err.Error()
}

func (e *parseError) Unwrap() error {
	return e.err
}

// load always returns a usable collection. The error reports why it is empty:
// a *parseError for an unparsable document, or a read failure.
func (s *JSONStore) load() (models.Collection, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewCollection(), nil
	}
	if err != nil {
		s.logger.Warn("read bookmark document", "path", s.path, "error", err)
		return models.NewCollection(), fmt.Errorf("read bookmark document: %w", err)
	}

	var c models.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.Warn("bookmark document unparsable; using empty collection", "path", s.path, "error", err)
		return models.NewCollection(), &parseError{err: err}
	}
	c.Normalize()
	return c, nil
}

// quarantine keeps a copy of an unparsable document before it is overwritten.
func (s *JSONStore) quarantine() {
	dst := s.path + ".corrupt"
	if err := renameFile(s.path, dst); err != nil {
		s.logger.Warn("move aside unparsable bookmark document", "path", s.path, "error", err)
		return
	}
	s.logger.Warn("moved aside unparsable bookmark document", "path", s.path, "copy", dst)
}

func (s *JSONStore) write(c models.Collection) error {
	c.Normalize()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookmark document: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp bookmark document: %w", err)
	}
	tmpPath := tmp.Name()
	writeErr := func() error {
		if _, err := tmp.Write(data); err != nil {
			return err
		}
		if err := tmp.Sync(); err != nil {
			return err
		}
		return tmp.Close()
	}()
	if writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write bookmark document: %w", writeErr)
	}
	if err := renameFile(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace bookmark document: %w", err)
	}
	return nil
}
