package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sitemgr/internal/api"
	"sitemgr/internal/format"
	"sitemgr/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeFileList(files []models.BlobInfo) error {
	for _, f := range files {
		if err := writePlain("%s\n", formatFileLine(f)); err != nil {
			return err
		}
	}
	return nil
}

func writeBookmarkList(bookmarks []models.Bookmark) error {
	for _, b := range bookmarks {
		if err := writePlain("%s\n", formatBookmarkLine(b)); err != nil {
			return err
		}
	}
	return nil
}

func writeBookmarkDetail(b models.Bookmark) error {
	lines := []string{
		fmt.Sprintf("id: %s", b.ID),
		fmt.Sprintf("title: %s", b.Title),
		fmt.Sprintf("url: %s", b.URL),
		fmt.Sprintf("created_at: %s", formatTimestamp(b.CreatedAt)),
	}
	if len(b.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("tags: %s", strings.Join(b.Tags, ", ")))
	}
	if len(b.Attachments) > 0 {
		lines = append(lines, "attachments:")
		for _, name := range b.Attachments {
			lines = append(lines, "  - "+name)
		}
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeAttachments(id string, resp api.AttachmentsResponse) error {
	if len(resp.Attachments) == 0 {
		return writePlain("%s: no attachments\n", id)
	}
	return writePlain("%s: %s\n", id, strings.Join(resp.Attachments, ", "))
}

func formatBookmarkLine(b models.Bookmark) string {
	line := fmt.Sprintf("%s  %s  %s", b.ID, b.Title, b.URL)
	if len(b.Tags) > 0 {
		line += "  [" + strings.Join(b.Tags, ", ") + "]"
	}
	if n := len(b.Attachments); n > 0 {
		line += fmt.Sprintf("  (%d attached)", n)
	}
	return line
}

func formatFileLine(f models.BlobInfo) string {
	return fmt.Sprintf("%-40s %10s  %s", f.Name, formatSize(f.Size), formatTimestamp(f.ModifiedAt))
}

func formatTimestamp(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format(time.RFC3339)
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
