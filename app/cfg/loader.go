package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultSystemPrompt = "Rewrite the following RSS feed item into a unique, SEO-friendly blog post. Use HTML headers (h2, h3) and paragraph tags. Do not be preachy. Just rewrite the content."

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath        string `long:"db-path" env:"DB_PATH" default:"./curator.db" description:"Path to the sqlite database file"`
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the aggregation cache (in-memory cache when empty)"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int    `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`

	// Application configuration
	FeedsDir      string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files"`
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://curator.example.com)"`
	APIAccessKey  string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	DefaultAuthor string `long:"default-author" env:"DEFAULT_AUTHOR" default:"admin" description:"Author recorded on drafts when the request names none"`

	// Rewrite API
	AIEndpoint   string `long:"ai-endpoint" env:"AI_ENDPOINT" default:"https://api.venice.ai/api/v1/chat/completions" description:"Chat-completions endpoint"`
	AIModel      string `long:"ai-model" env:"AI_MODEL" default:"venice-uncensored" description:"Model id sent with rewrite requests"`
	AIAPIKey     string `long:"ai-api-key" env:"AI_API_KEY" description:"Initial rewrite API credential, stored on first start"`
	SystemPrompt string `long:"system-prompt" env:"SYSTEM_PROMPT" description:"Initial system prompt, stored on first start"`

	// Application metadata
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"RSS Curator/1.0" description:"User agent string for HTTP requests"`
	FetchTimeout int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	Timezone     string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and the environment. It returns nil, nil when help was
// requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.FetchTimeout <= 0 {
		return nil, fmt.Errorf("fetch timeout must be positive, got %d", raw.FetchTimeout)
	}

	cfg := &Cfg{
		DBPath:        raw.DBPath,
		RedisAddr:     raw.RedisAddr,
		RedisPassword: raw.RedisPassword,
		RedisDB:       raw.RedisDB,
		FeedsDir:      raw.FeedsDir,
		Port:          raw.Port,
		BaseUrl:       raw.BaseUrl,
		APIAccessKey:  raw.APIAccessKey,
		DefaultAuthor: raw.DefaultAuthor,
		AIEndpoint:    raw.AIEndpoint,
		AIModel:       raw.AIModel,
		AIAPIKey:      raw.AIAPIKey,
		SystemPrompt:  raw.SystemPrompt,
		UserAgent:     raw.UserAgent,
		FetchTimeout:  time.Duration(raw.FetchTimeout) * time.Second,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	cfg.Location = loadLocation(cfg.Timezone)

	return cfg, nil
}

func loadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("Invalid timezone, using UTC", "timezone", timezone, "error", err)
		return time.UTC
	}
	return loc
}
