package main

import "strings"

// splitTagFlags flattens repeated and comma separated --tag values.
func splitTagFlags(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, splitCommaList(value)...)
	}
	return out
}

func splitCommaList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
