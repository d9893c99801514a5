package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	slug "github.com/goliatone/go-slug"
)

// Metadata carries the optional frontmatter header of a source document.
// Hosting applications typically map Title and Description onto the container.
type Metadata struct {
	Title       string         `yaml:"title"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	Custom      map[string]any `yaml:",inline"`
}

// ParseMetadata extracts the frontmatter header and returns the remaining
// markdown body. Documents without a header pass through untouched. A present
// but empty slug is derived from the title.
func ParseMetadata(source []byte) (Metadata, []byte, error) {
	var meta Metadata

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	meta.Title = strings.TrimSpace(meta.Title)
	meta.Description = strings.TrimSpace(meta.Description)
	meta.Slug = strings.TrimSpace(meta.Slug)

	if meta.Slug == "" && meta.Title != "" {
		if normalized, err := slug.Normalize(meta.Title); err == nil {
			meta.Slug = normalized
		}
	}

	return meta, body, nil
}
