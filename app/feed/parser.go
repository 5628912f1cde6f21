package feed

import (
	"bytes"
	"cmp"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		normalized := p.normalizeItem(item)
		normalized.Source = metadata.Title
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Title: item.Title,
		Link:  item.Link,
		// Full content wins; the short description is the fallback.
		Content: cmp.Or(item.Content, item.Description),
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed.Unix()
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed.Unix()
	}

	return normalized
}
