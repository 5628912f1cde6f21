package database

import (
	"context"
	"testing"
)

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	if _, found, err := repo.Get(ctx, SettingAPIKey); err != nil || found {
		t.Fatalf("Expected unset key, got found=%v err=%v", found, err)
	}

	if err := repo.SetDefault(ctx, SettingAPIKey, "seed"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetDefault(ctx, SettingAPIKey, "ignored"); err != nil {
		t.Fatal(err)
	}

	value, found, _ := repo.Get(ctx, SettingAPIKey)
	if !found || value != "seed" {
		t.Errorf("Expected seeded value, got %q found=%v", value, found)
	}

	repo.Set(ctx, SettingAPIKey, "edited")
	value, _, _ = repo.Get(ctx, SettingAPIKey)
	if value != "edited" {
		t.Errorf("Expected edited value, got %q", value)
	}

	if err := repo.Delete(ctx, SettingAPIKey); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := repo.Get(ctx, SettingAPIKey); found {
		t.Error("Expected key to be deleted")
	}
}
