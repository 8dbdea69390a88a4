package models

import (
	"regexp"
	"strings"
)

// CollectionVersion is the document layout version written by this build.
const CollectionVersion = 1

const defaultURLScheme = "https://"

var schemePrefixRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// Bookmark is a user-entered reference to a URL.
type Bookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Tags        []string  `json:"tags"`
	Attachments []string  `json:"attachments"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Collection is the persisted bookmark document.
type Collection struct {
	Version   int        `json:"version"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewCollection returns an empty collection at the current layout version.
func NewCollection() Collection {
	return Collection{Version: CollectionVersion, Bookmarks: []Bookmark{}}
}

// Normalize fills defaults for documents written by older builds.
// Documents without a version key predate versioning and are version 1.
func (c *Collection) Normalize() {
	if c.Version <= 0 {
		c.Version = CollectionVersion
	}
	if c.Bookmarks == nil {
		c.Bookmarks = []Bookmark{}
	}
	for i := range c.Bookmarks {
		c.Bookmarks[i].Normalize()
	}
}

// Index returns the position of id in the collection or -1.
func (c Collection) Index(id string) int {
	for i := range c.Bookmarks {
		if c.Bookmarks[i].ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether a bookmark with id exists.
func (c Collection) Has(id string) bool {
	return c.Index(id) >= 0
}

// Clone returns a deep copy so callers cannot alias store state.
func (c Collection) Clone() Collection {
	out := Collection{Version: c.Version, Bookmarks: make([]Bookmark, 0, len(c.Bookmarks))}
	for _, b := range c.Bookmarks {
		out.Bookmarks = append(out.Bookmarks, b.Clone())
	}
	return out
}

// Normalize replaces nil slices with empty ones.
func (b *Bookmark) Normalize() {
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Attachments == nil {
		b.Attachments = []string{}
	}
}

// Clone returns a deep copy of b.
func (b Bookmark) Clone() Bookmark {
	out := b
	out.Tags = append([]string{}, b.Tags...)
	out.Attachments = append([]string{}, b.Attachments...)
	return out
}

// HasAttachment reports whether name is in the attachment list.
func (b Bookmark) HasAttachment(name string) bool {
	for _, existing := range b.Attachments {
		if existing == name {
			return true
		}
	}
	return false
}

// AddAttachment appends name unless already present. It reports whether b changed.
func (b *Bookmark) AddAttachment(name string) bool {
	if b.HasAttachment(name) {
		return false
	}
	b.Attachments = append(b.Attachments, name)
	return true
}

// RemoveAttachment drops every occurrence of name. It reports whether b changed.
func (b *Bookmark) RemoveAttachment(name string) bool {
	kept := make([]string, 0, len(b.Attachments))
	for _, existing := range b.Attachments {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	changed := len(kept) != len(b.Attachments)
	b.Attachments = kept
	return changed
}

// NormalizeURL trims raw and prefixes https:// when no scheme is present.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if schemePrefixRegex.MatchString(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return defaultURLScheme + raw
}

// NormalizeTags trims tags, drops empties and duplicates, and keeps first-seen order.
func NormalizeTags(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
