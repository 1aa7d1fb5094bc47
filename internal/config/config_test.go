package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Server.MaxItems)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "browser", cfg.Fulfillment.Strategy)
	assert.Equal(t, time.Second, cfg.Queue.Cooldown)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
	assert.False(t, cfg.AI.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
queue:
  cooldown: 250ms
fulfillment:
  strategy: catalog
catalog:
  api_key: secret-key
ai:
  enabled: true
  provider: ollama
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("CARTPILOT_SERVER_PORT", "9090")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Queue.Cooldown)
	assert.Equal(t, "catalog", cfg.Fulfillment.Strategy)
	assert.Equal(t, "secret-key", cfg.Catalog.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.AI.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: "3001", MaxItems: 50},
		Database: DBConfig{Driver: "sqlite", Path: "test.db"},
		AI:       AIConfig{Provider: "none"},
		Fulfillment: FulfillmentConfig{
			Strategy:      "browser",
			Retailer:      "walmart",
			MaxCandidates: 10,
			DelayMin:      time.Second,
			DelayMax:      2 * time.Second,
		},
		Webhook: WebhookConfig{Timeout: 10 * time.Second},
		Queue:   QueueConfig{Size: 10, Cooldown: time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(_ *Config) {}},
		{name: "unknown strategy", mutate: func(c *Config) { c.Fulfillment.Strategy = "drone" }, wantErr: true},
		{name: "too many items", mutate: func(c *Config) { c.Server.MaxItems = 51 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "ai enabled without provider", mutate: func(c *Config) { c.AI.Enabled = true }, wantErr: true},
		{
			name: "gemini without key",
			mutate: func(c *Config) {
				c.AI = AIConfig{Enabled: true, Provider: "gemini", Timeout: time.Second}
			},
			wantErr: true,
		},
		{name: "inverted delays", mutate: func(c *Config) { c.Fulfillment.DelayMin = 5 * time.Second }, wantErr: true},
		{name: "zero queue", mutate: func(c *Config) { c.Queue.Size = 0 }, wantErr: true},
		{
			name: "catalog without credentials",
			mutate: func(c *Config) {
				c.Fulfillment.Strategy = "catalog"
				c.Catalog = CatalogConfig{BaseURL: "https://api.example.com"}
			},
			wantErr: true,
		},
		{
			name: "catalog with signing key",
			mutate: func(c *Config) {
				c.Fulfillment.Strategy = "catalog"
				c.Catalog = CatalogConfig{BaseURL: "https://api.example.com", ConsumerID: "c", PrivateKeyPath: "k.pem"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
