package curator

import (
	"context"

	"github.com/lysyi3m/rss-curator/app/apperr"
	"github.com/lysyi3m/rss-curator/app/database"
)

type Settings struct {
	APIKeySet       bool   `json:"api_key_set"`
	SystemPrompt    string `json:"system_prompt"`
	PromptIsDefault bool   `json:"prompt_is_default"`
}

// SettingsUpdate changes only the fields that are non-nil. An empty
// APIKey clears the stored credential.
type SettingsUpdate struct {
	APIKey       *string
	SystemPrompt *string
}

// SeedSettings stores the startup credential and prompt unless values were
// stored before.
func (c *Curator) SeedSettings(ctx context.Context, apiKey, prompt string) error {
	if apiKey != "" {
		if err := c.settings.SetDefault(ctx, database.SettingAPIKey, apiKey); err != nil {
			return apperr.Storage("failed to seed settings", err)
		}
	}
	if prompt != "" {
		if err := c.settings.SetDefault(ctx, database.SettingSystemPrompt, prompt); err != nil {
			return apperr.Storage("failed to seed settings", err)
		}
	}
	return nil
}

func (c *Curator) Settings(ctx context.Context) (Settings, error) {
	key, _, err := c.settings.Get(ctx, database.SettingAPIKey)
	if err != nil {
		return Settings{}, apperr.Storage("failed to read settings", err)
	}

	prompt, stored, err := c.settings.Get(ctx, database.SettingSystemPrompt)
	if err != nil {
		return Settings{}, apperr.Storage("failed to read settings", err)
	}

	if !stored || prompt == "" {
		prompt = c.defaultPrompt
	}

	return Settings{
		APIKeySet:       key != "",
		SystemPrompt:    prompt,
		PromptIsDefault: prompt == c.defaultPrompt,
	}, nil
}

func (c *Curator) UpdateSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	if update.APIKey != nil {
		if err := c.settings.Set(ctx, database.SettingAPIKey, *update.APIKey); err != nil {
			return Settings{}, apperr.Storage("failed to save settings", err)
		}
	}
	if update.SystemPrompt != nil {
		if err := c.settings.Set(ctx, database.SettingSystemPrompt, *update.SystemPrompt); err != nil {
			return Settings{}, apperr.Storage("failed to save settings", err)
		}
	}
	return c.Settings(ctx)
}

// RestoreDefaultPrompt drops the stored prompt so the built-in one applies.
func (c *Curator) RestoreDefaultPrompt(ctx context.Context) (Settings, error) {
	if err := c.settings.Delete(ctx, database.SettingSystemPrompt); err != nil {
		return Settings{}, apperr.Storage("failed to save settings", err)
	}
	return c.Settings(ctx)
}

// VerifyCredential checks key, or the stored credential when key is empty.
func (c *Curator) VerifyCredential(ctx context.Context, key string) (string, error) {
	if key == "" {
		stored, _, err := c.settings.Get(ctx, database.SettingAPIKey)
		if err != nil {
			return "", apperr.Storage("failed to read settings", err)
		}
		key = stored
	}
	if key == "" {
		return "", apperr.Config("credential missing")
	}

	return c.verifier.Verify(ctx, key)
}

func (c *Curator) systemPrompt(ctx context.Context) (string, error) {
	prompt, stored, err := c.settings.Get(ctx, database.SettingSystemPrompt)
	if err != nil {
		return "", apperr.Storage("failed to read settings", err)
	}
	if !stored || prompt == "" {
		return c.defaultPrompt, nil
	}
	return prompt, nil
}
