package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sitemgr/internal/models"
)

const tmpDirName = ".tmp"

// LocalDir stores blobs as plain files named after the blob in one directory.
type LocalDir struct {
	root string
}

// NewLocalDir creates a blob directory rooted at root.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("uploads directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, tmpDirName), 0o755); err != nil {
		return nil, err
	}
	return &LocalDir{root: abs}, nil
}

// Root returns the absolute blob directory.
func (d *LocalDir) Root() string {
	if d == nil {
		return ""
	}
	return d.root
}

// List returns every regular file in the blob directory, sorted by name.
func (d *LocalDir) List(ctx context.Context) ([]models.BlobInfo, error) {
	if d == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	out := make([]models.BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Deleted between ReadDir and Info.
				continue
			}
			return nil, fmt.Errorf("stat blob %s: %w", entry.Name(), err)
		}
		out = append(out, blobInfo(entry.Name(), info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Put streams r into a temp file and renames it over name.
func (d *LocalDir) Put(ctx context.Context, name string, r io.Reader) (BlobPutResult, error) {
	var zero BlobPutResult
	if d == nil {
		return zero, fmt.Errorf("blob store is not configured")
	}
	if r == nil {
		return zero, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	dst, err := d.pathFromName(name)
	if err != nil {
		return zero, err
	}

	tmp, err := os.CreateTemp(filepath.Join(d.root, tmpDirName), "put-*")
	if err != nil {
		return zero, err
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return zero, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zero, err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return zero, fmt.Errorf("store blob %s: %w", name, err)
	}

	return BlobPutResult{Name: name, Size: n}, nil
}

// Open returns a reader for the named blob.
func (d *LocalDir) Open(ctx context.Context, name string) (io.ReadCloser, models.BlobInfo, error) {
	if d == nil {
		return nil, models.BlobInfo{}, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, models.BlobInfo{}, err
	}
	path, err := d.pathFromName(name)
	if err != nil {
		return nil, models.BlobInfo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, models.BlobInfo{}, mapNotExist(name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, models.BlobInfo{}, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, models.BlobInfo{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return f, blobInfo(name, info), nil
}

// Stat returns metadata for the named blob.
func (d *LocalDir) Stat(ctx context.Context, name string) (models.BlobInfo, error) {
	if d == nil {
		return models.BlobInfo{}, fmt.Errorf("blob store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return models.BlobInfo{}, err
	}
	path, err := d.pathFromName(name)
	if err != nil {
		return models.BlobInfo{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.BlobInfo{}, mapNotExist(name, err)
	}
	if !info.Mode().IsRegular() {
		return models.BlobInfo{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return blobInfo(name, info), nil
}

// Delete removes the named blob. Missing blobs are reported as ErrNotFound.
func (d *LocalDir) Delete(ctx context.Context, name string) error {
	if _, err := d.Stat(ctx, name); err != nil {
		return err
	}
	path, err := d.pathFromName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return mapNotExist(name, err)
	}
	return nil
}

// ValidateName reports whether name can be stored as a single directory entry.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..", name == tmpDirName:
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (d *LocalDir) pathFromName(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.root, name), nil
}

func mapNotExist(name string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return err
}

func blobInfo(name string, info os.FileInfo) models.BlobInfo {
	return models.BlobInfo{
		Name:       name,
		Size:       info.Size(),
		ModifiedAt: models.NewTimestamp(info.ModTime()),
	}
}
