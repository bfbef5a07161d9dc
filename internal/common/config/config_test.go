package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: test
postgres:
  host: db
  password: secret
bot:
  api_key: token
  channels:
    - id: -1001
      url: https://t.me/RICH_CARSETA
promo:
  max_reward: 500
  codes:
    - code: CODE1
      category: normal
      reward: 10
top_ups:
  - coins: 100
    price: "1.5"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GetPostgresURL() != "postgres://postgres:secret@db:5432/cars_bot?sslmode=disable" {
		t.Errorf("unexpected postgres url %q", cfg.GetPostgresURL())
	}
	if cfg.Bot.Timeout != 10*time.Second {
		t.Errorf("default bot timeout = %v", cfg.Bot.Timeout)
	}
	if cfg.Promo.TTL != 7*24*time.Hour {
		t.Errorf("default promo ttl = %v", cfg.Promo.TTL)
	}
	if cfg.Promo.MaxReward != 500 {
		t.Errorf("promo max reward = %d", cfg.Promo.MaxReward)
	}
	if len(cfg.Promo.Codes) != 1 || cfg.Promo.Codes[0].Code != "CODE1" {
		t.Errorf("unexpected promo codes %+v", cfg.Promo.Codes)
	}
	if len(cfg.Bot.Channels) != 1 || cfg.Bot.Channels[0].ID != -1001 {
		t.Errorf("unexpected channels %+v", cfg.Bot.Channels)
	}
	if len(cfg.TopUps) != 1 || cfg.TopUps[0].Price != "1.5" {
		t.Errorf("unexpected top ups %+v", cfg.TopUps)
	}
	if cfg.Cryptomus.Enabled() {
		t.Error("cryptomus must be disabled without credentials")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: test
postgres:
  host: db
`)

	t.Setenv("POSTGRES_HOST", "override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Postgres.Host != "override" {
		t.Errorf("expected env override, got %q", cfg.Postgres.Host)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing api key", "env: prod\n"},
		{"channel without url", "env: test\nbot:\n  channels:\n    - id: 1\n"},
		{"negative max reward", "env: test\npromo:\n  max_reward: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOT_API_KEY", "")

			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadRequiresPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
