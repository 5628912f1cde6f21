package feed

import (
	"fmt"
	"net/url"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishedAt int64  `json:"published_at"` // unix seconds, 0 when the feed gives no date
	Content     string `json:"content"`
	Source      string `json:"source"` // display name copied at fetch time

	IsFiltered   bool   `json:"-"`
	FilterReason string `json:"-"`
}

// Source configuration types

type Source struct {
	ID      string         `yaml:"-"`
	URL     string         `yaml:"url"`
	Name    string         `yaml:"name"`
	Filters []SourceFilter `yaml:"filters"`
}

type SourceFilter struct {
	Field    string   `yaml:"field" json:"field"`
	Includes []string `yaml:"includes" json:"includes,omitempty"`
	Excludes []string `yaml:"excludes" json:"excludes,omitempty"`
}

// Scope partitions aggregation and caching: either every registered source
// or a single source id.
type Scope string

const ScopeAll Scope = ""

func ScopeFor(sourceID string) Scope {
	return Scope(sourceID)
}

func (s Scope) IsAll() bool {
	return s == ScopeAll
}

func (s Scope) SourceID() string {
	return string(s)
}

func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return string(s)
}

var validFilterFields = map[string]bool{
	"title":   true,
	"content": true,
	"link":    true,
}

// ValidateSource checks the fields the registry requires before a source is
// stored.
func ValidateSource(src Source) error {
	if src.ID == "" {
		return fmt.Errorf("source id is required")
	}
	if err := ValidateURL(src.URL); err != nil {
		return err
	}

	for i, filter := range src.Filters {
		if !validFilterFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("feed URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid feed URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}
