package feed

import "testing"

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Test Item 1", Content: "Test content"},
		{Title: "Test Item 2", Content: "Another content"},
	}

	result := filterer.Run(items, nil)

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
	for i, item := range result {
		if item.IsFiltered {
			t.Errorf("Item %d should not be filtered when no filters are configured", i)
		}
	}
}

func TestFilterer_TitleInclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Breaking News: Important Update"},
		{Title: "Sports Update"},
		{Title: "Weather Report"},
	}

	filters := []SourceFilter{
		{Field: "title", Includes: []string{"news", "update"}},
	}

	result := filterer.Run(items, filters)

	if result[0].IsFiltered || result[1].IsFiltered {
		t.Error("Items containing included terms should not be filtered")
	}
	if !result[2].IsFiltered {
		t.Error("Third item should be filtered, doesn't contain included terms")
	}
	if result[2].FilterReason == "" {
		t.Error("Third item should have filter reason")
	}
}

func TestFilterer_ContentExclude(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "One", Content: "<p>regular article</p>"},
		{Title: "Two", Content: "<p>Sponsored content</p>"},
	}

	filters := []SourceFilter{
		{Field: "content", Excludes: []string{"SPONSORED"}},
	}

	result := filterer.Run(items, filters)

	if result[0].IsFiltered {
		t.Error("First item should not be filtered")
	}
	if !result[1].IsFiltered {
		t.Error("Second item should be filtered, exclude match is case-insensitive")
	}
}

func TestFilterer_Visible(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "keep", Link: "https://example.com/a"},
		{Title: "drop", Link: "https://ads.example.com/b"},
		{Title: "keep too", Link: "https://example.com/c"},
	}

	filters := []SourceFilter{
		{Field: "link", Excludes: []string{"ads."}},
	}

	visible := filterer.Visible(items, filters)

	if len(visible) != 2 {
		t.Fatalf("Expected 2 visible items, got %d", len(visible))
	}
	if visible[0].Title != "keep" || visible[1].Title != "keep too" {
		t.Errorf("Expected input order to be preserved, got %q, %q", visible[0].Title, visible[1].Title)
	}
}
