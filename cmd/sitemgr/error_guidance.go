package main

import (
	"context"
	"errors"
	"net"

	"sitemgr/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: set SITEMGR_API_TOKEN to the token hashed into auth.token_hash.")
		case "resource_exhausted":
			lines = append(lines, "hint: too many uploads in flight; retry shortly.")
		case "not_found":
			lines = append(lines, notFoundHint(apiErr.ErrorCode))
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify SITEMGR_API_URL points to a sitemgr server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase SITEMGR_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a sitemgr server is running at SITEMGR_API_URL.",
			"hint: start local server manually with: sitemgr srv",
			"hint: you can increase SITEMGR_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

// notFoundHint maps the server's numeric not-found codes to a next step.
func notFoundHint(errorCode int) string {
	switch errorCode {
	case 2001:
		return "hint: list bookmark ids with: sitemgr bookmarks ls"
	case 2003:
		return "hint: the file is not attached to this bookmark."
	case 2005:
		return "hint: list uploaded files with: sitemgr files ls"
	default:
		return ""
	}
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
