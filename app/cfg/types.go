package cfg

import (
	"fmt"
	"strings"
	"time"
)

type Cfg struct {
	// Storage
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Application configuration
	FeedsDir      string
	Port          string
	BaseUrl       string
	APIAccessKey  string
	DefaultAuthor string

	// Rewrite API
	AIEndpoint   string
	AIModel      string
	AIAPIKey     string
	SystemPrompt string

	// Application metadata
	UserAgent    string
	FetchTimeout time.Duration
	Timezone     string
	Location     *time.Location
	Debug        bool
	Version      string
}

// PublicURL is the externally visible base of the service without a
// trailing slash.
func (c *Cfg) PublicURL() string {
	if c.BaseUrl != "" {
		return strings.TrimRight(c.BaseUrl, "/")
	}
	return fmt.Sprintf("http://localhost:%s", c.Port)
}
