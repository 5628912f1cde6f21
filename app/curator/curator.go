// Package curator holds the process-wide collaborators the API operates on.
// A single Curator is built in main and passed to the handlers.
package curator

import (
	"cmp"
	"context"
	"log/slog"

	"github.com/lysyi3m/rss-curator/app/apperr"
	"github.com/lysyi3m/rss-curator/app/database"
	"github.com/lysyi3m/rss-curator/app/feed"
	"github.com/lysyi3m/rss-curator/app/publish"
)

const (
	ActionRewrite      = "Rewrite"
	ActionRewriteAgain = "Rewrite Again"
)

type SourceStore interface {
	ListSources(ctx context.Context) ([]feed.Source, error)
	GetSource(ctx context.Context, id string) (*feed.Source, error)
	GetSourceCount(ctx context.Context) (int, error)
	UpsertSourceWithChangeDetection(ctx context.Context, src feed.Source) (bool, error)
	DeleteSource(ctx context.Context, id string) (bool, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, sourceID string) error
}

type DraftLookup interface {
	FindLatestDraft(ctx context.Context, link string) (int64, bool, error)
}

type DocumentLookup interface {
	Get(ctx context.Context, id int64) (*database.Document, error)
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetDefault(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (publish.Result, error)
	EditURL(id int64) string
}

type Deps struct {
	Sources       SourceStore
	Aggregator    *feed.Aggregator
	Cache         Invalidator
	Drafts        DraftLookup
	Documents     DocumentLookup
	Settings      SettingsStore
	Verifier      Verifier
	Publisher     Publisher
	Loader        *feed.SourceLoader
	DefaultPrompt string
	DefaultAuthor string
}

type Curator struct {
	sources       SourceStore
	aggregator    *feed.Aggregator
	cache         Invalidator
	drafts        DraftLookup
	documents     DocumentLookup
	settings      SettingsStore
	verifier      Verifier
	publisher     Publisher
	loader        *feed.SourceLoader
	defaultPrompt string
	defaultAuthor string
}

func New(deps Deps) *Curator {
	return &Curator{
		sources:       deps.Sources,
		aggregator:    deps.Aggregator,
		cache:         deps.Cache,
		drafts:        deps.Drafts,
		documents:     deps.Documents,
		settings:      deps.Settings,
		verifier:      deps.Verifier,
		publisher:     deps.Publisher,
		loader:        deps.Loader,
		defaultPrompt: deps.DefaultPrompt,
		defaultAuthor: cmp.Or(deps.DefaultAuthor, "admin"),
	}
}

// ListedItem is a feed item annotated with its most recent draft, if any.
type ListedItem struct {
	feed.Item
	DraftID int64  `json:"draft_id,omitempty"`
	EditURL string `json:"edit_url,omitempty"`
	Action  string `json:"action"`
}

// Items returns the merged listing of scope.
func (c *Curator) Items(ctx context.Context, scope feed.Scope, limit int) ([]feed.Item, error) {
	items, err := c.aggregator.Aggregate(ctx, scope, limit)
	if err != nil {
		return nil, apperr.Storage("failed to load items", err)
	}
	return items, nil
}

// ListItems is Items with each entry marked as new or already rewritten.
func (c *Curator) ListItems(ctx context.Context, scope feed.Scope, limit int) ([]ListedItem, error) {
	items, err := c.Items(ctx, scope, limit)
	if err != nil {
		return nil, err
	}

	listed := make([]ListedItem, 0, len(items))
	for _, item := range items {
		entry := ListedItem{Item: item, Action: ActionRewrite}

		id, found, err := c.drafts.FindLatestDraft(ctx, item.Link)
		if err != nil {
			slog.Warn("Failed to look up draft", "link", item.Link, "error", err)
		} else if found {
			entry.DraftID = id
			entry.EditURL = c.publisher.EditURL(id)
			entry.Action = ActionRewriteAgain
		}

		listed = append(listed, entry)
	}

	return listed, nil
}

type PublishInput struct {
	Title   string
	Link    string
	Content string
	Author  string
}

// Publish rewrites and stores an item using the stored credential and
// system prompt.
func (c *Curator) Publish(ctx context.Context, in PublishInput) (publish.Result, error) {
	credential, _, err := c.settings.Get(ctx, database.SettingAPIKey)
	if err != nil {
		return publish.Result{}, apperr.Storage("failed to read settings", err)
	}

	prompt, err := c.systemPrompt(ctx)
	if err != nil {
		return publish.Result{}, err
	}

	return c.publisher.Publish(ctx, publish.Request{
		Title:        in.Title,
		Link:         in.Link,
		Content:      in.Content,
		Credential:   credential,
		SystemPrompt: prompt,
		Author:       cmp.Or(in.Author, c.defaultAuthor),
	})
}

func (c *Curator) Document(ctx context.Context, id int64) (*database.Document, error) {
	doc, err := c.documents.Get(ctx, id)
	if err != nil {
		return nil, apperr.Storage("failed to load document", err)
	}
	return doc, nil
}

func (c *Curator) SourceCount(ctx context.Context) (int, error) {
	count, err := c.sources.GetSourceCount(ctx)
	if err != nil {
		return 0, apperr.Storage("failed to count sources", err)
	}
	return count, nil
}
