package api

import (
	"time"

	"github.com/lysyi3m/rss-curator/app/feed"
)

const (
	defaultListLimit = 50
	defaultFeedLimit = 10
	maxLimit         = 200

	userHeader = "X-User"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.Item) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Options struct {
	PublicURL    string
	Version      string
	CacheBackend string
	Location     *time.Location
}

type publishRequest struct {
	Title           string `json:"title" binding:"required"`
	Link            string `json:"link" binding:"required"`
	Content         string `json:"content"`
	ContentEncoding string `json:"content_encoding"`
}

type settingsRequest struct {
	APIKey       *string `json:"api_key"`
	SystemPrompt *string `json:"system_prompt"`
}

type verifyRequest struct {
	APIKey string `json:"api_key"`
}

type sourceRequest struct {
	Name    string              `json:"name"`
	URL     string              `json:"url" binding:"required"`
	Filters []feed.SourceFilter `json:"filters"`
}
