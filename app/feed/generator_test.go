package feed

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator(time.UTC)

	channel := Channel{
		Title:     "Curated Feed",
		Link:      "http://localhost:8080",
		SelfLink:  "http://localhost:8080/feed",
		Generator: "RSS-Curator/test",
	}

	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC).Unix()
	items := []Item{
		{
			Title:       "Test Item 1",
			Link:        "https://example.com/item1",
			PublishedAt: published,
			Content:     "<p>Test Item 1 Content</p>",
			Source:      "Example",
		},
		{
			Title:  "Undated & Bare",
			Link:   "https://example.com/item2",
			Source: "Example",
		},
	}

	rss, err := generator.Run(channel, items)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	checks := []struct {
		want string
		msg  string
	}{
		{`<?xml version="1.0" encoding="UTF-8"?>`, "XML declaration"},
		{`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`, "RSS 2.0 declaration"},
		{"<title>Curated Feed</title>", "channel title"},
		{"<description>Curated Feed</description>", "channel description fallback"},
		{`<atom:link href="http://localhost:8080/feed" rel="self" type="application/rss+xml" />`, "self link"},
		{"<lastBuildDate>Mon, 03 Jul 2023 10:00:00 +0000</lastBuildDate>", "last build date from newest item"},
		{"<generator>RSS-Curator/test</generator>", "generator"},
		{`<guid isPermaLink="true">https://example.com/item1</guid>`, "permalink guid"},
		{"<description>&lt;p&gt;Test Item 1 Content&lt;/p&gt;</description>", "escaped content"},
		{"<pubDate>Mon, 03 Jul 2023 10:00:00 +0000</pubDate>", "item pubDate"},
		{"<category>Example</category>", "source as category"},
		{"<title>Undated &amp; Bare</title>", "escaped title"},
		{"<description>No description available</description>", "empty content placeholder"},
	}

	for _, check := range checks {
		if !strings.Contains(rss, check.want) {
			t.Errorf("RSS should contain %s: %s", check.msg, check.want)
		}
	}

	if strings.Count(rss, "<pubDate>") != 1 {
		t.Error("Undated item should not have a pubDate")
	}
	if strings.Index(rss, "Test Item 1") > strings.Index(rss, "Undated") {
		t.Error("Items should be rendered in the order given")
	}
}

func TestGenerateRSSLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	generator := NewGenerator(loc)

	items := []Item{{
		Title:       "Item",
		Link:        "https://example.com/item",
		PublishedAt: time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC).Unix(),
	}}

	rss, err := generator.Run(Channel{Title: "Feed"}, items)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(rss, "<pubDate>Mon, 03 Jul 2023 13:00:00 +0300</pubDate>") {
		t.Error("pubDate should be rendered in the configured location")
	}
	if strings.Contains(rss, "atom:link href") {
		t.Error("Self link should be omitted when not set")
	}
}
