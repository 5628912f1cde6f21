package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceLoader reads feed sources from *.yml files. The file stem becomes
// the source id.
type SourceLoader struct {
	feedsDir string
}

func NewSourceLoader(feedsDir string) *SourceLoader {
	return &SourceLoader{feedsDir: feedsDir}
}

// Run loads every source in the feeds directory, sorted by id. A missing
// directory yields no sources.
func (sl *SourceLoader) Run() ([]Source, error) {
	if _, err := os.Stat(sl.feedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(sl.feedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	sort.Strings(files)

	sources := make([]Source, 0, len(files))
	for _, file := range files {
		id := strings.TrimSuffix(filepath.Base(file), ".yml")

		src, err := sl.Load(id)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", src.ID, "url", src.URL, "filters", len(src.Filters))
		sources = append(sources, *src)
	}

	return sources, nil
}

// Load reads and validates a single source file by id.
func (sl *SourceLoader) Load(id string) (*Source, error) {
	file := filepath.Join(sl.feedsDir, id+".yml")

	src, err := sl.parse(file)
	if err != nil {
		return nil, err
	}
	src.ID = id

	if err := ValidateSource(*src); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", file, err)
	}

	return src, nil
}

func (sl *SourceLoader) parse(file string) (*Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &src, nil
}
