package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sitemgr/internal/api"
)

// importRecord is one bookmark in an import file. Tags may be a list or a
// comma separated string.
type importRecord struct {
	Title string   `yaml:"title"`
	URL   string   `yaml:"url"`
	Tags  tagsYAML `yaml:"tags"`
}

type tagsYAML []string

func (t *tagsYAML) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = splitCommaList(node.Value)
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*t = values
		return nil
	default:
		return fmt.Errorf("line %d: tags must be a list or a string", node.Line)
	}
}

type importFile struct {
	Bookmarks []importRecord `yaml:"bookmarks"`
}

func readBookmarkImportFile(path string) ([]api.BookmarkCreateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseBookmarkImport(data)
}

// parseBookmarkImport accepts either a top-level list of bookmarks or a
// mapping with a bookmarks key.
func parseBookmarkImport(data []byte) ([]api.BookmarkCreateRequest, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, errors.New("no bookmarks found in import file")
	}

	var records []importRecord
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("parse import file: %w", err)
		}
	case yaml.MappingNode:
		var file importFile
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse import file: %w", err)
		}
		records = file.Bookmarks
	default:
		return nil, errors.New("import file must be a list of bookmarks or a mapping with a bookmarks key")
	}
	if len(records) == 0 {
		return nil, errors.New("no bookmarks found in import file")
	}

	out := make([]api.BookmarkCreateRequest, 0, len(records))
	for i, rec := range records {
		title := strings.TrimSpace(rec.Title)
		url := strings.TrimSpace(rec.URL)
		if title == "" || url == "" {
			return nil, fmt.Errorf("bookmark %d: title and url are required", i+1)
		}
		out = append(out, api.BookmarkCreateRequest{Title: title, URL: url, Tags: []string(rec.Tags)})
	}
	return out, nil
}
