// Package config loads cartpilot settings from config.yaml, a .env file and
// CARTPILOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/cartpilot/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DBConfig          `mapstructure:"database"`
	Logging     logger.Config     `mapstructure:"logging"`
	AI          AIConfig          `mapstructure:"ai"`
	Fulfillment FulfillmentConfig `mapstructure:"fulfillment"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Queue       QueueConfig       `mapstructure:"queue"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	RequirePremium bool   `mapstructure:"require_premium"`
	MaxItems       int    `mapstructure:"max_items"`
	SecondsPerItem int    `mapstructure:"seconds_per_item"`
}

// DBConfig selects the SQL backend. Path is used by sqlite, the remaining
// connection fields by postgres.
type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	Model        string        `mapstructure:"model"`
	OllamaHost   string        `mapstructure:"ollama_host"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type FulfillmentConfig struct {
	Strategy      string        `mapstructure:"strategy"`
	Retailer      string        `mapstructure:"retailer"`
	MaxCandidates int           `mapstructure:"max_candidates"`
	DelayMin      time.Duration `mapstructure:"delay_min"`
	DelayMax      time.Duration `mapstructure:"delay_max"`
	ProfileFile   string        `mapstructure:"profile_file"`
}

type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	ExecPath          string        `mapstructure:"exec_path"`
	ProxyServer       string        `mapstructure:"proxy_server"`
	UserAgent         string        `mapstructure:"user_agent"`
	ProfilePath       string        `mapstructure:"profile_path"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout"`
}

type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	CartBaseURL    string        `mapstructure:"cart_base_url"`
	APIKey         string        `mapstructure:"api_key"`
	PublisherID    string        `mapstructure:"publisher_id"`
	ConsumerID     string        `mapstructure:"consumer_id"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	KeyVersion     string        `mapstructure:"key_version"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type WebhookConfig struct {
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type QueueConfig struct {
	Size       int           `mapstructure:"size"`
	Cooldown   time.Duration `mapstructure:"cooldown"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
	LogBuffer  int           `mapstructure:"log_buffer"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.require_premium", true)
	v.SetDefault("server.max_items", 50)
	v.SetDefault("server.seconds_per_item", 3)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "cartpilot.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "cartpilot")
	v.SetDefault("database.username", "cartpilot")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file", "cartpilot.log")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "none")
	v.SetDefault("ai.model", "gemma3:latest")
	v.SetDefault("ai.ollama_host", "http://localhost:11434")
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.timeout", 30*time.Second)

	v.SetDefault("fulfillment.strategy", "browser")
	v.SetDefault("fulfillment.retailer", "walmart")
	v.SetDefault("fulfillment.max_candidates", 10)
	v.SetDefault("fulfillment.delay_min", 2*time.Second)
	v.SetDefault("fulfillment.delay_max", 5*time.Second)
	v.SetDefault("fulfillment.profile_file", "")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.proxy_server", "")
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("browser.profile_path", "")
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.action_timeout", 10*time.Second)

	v.SetDefault("catalog.base_url", "https://developer.api.walmart.com/api-proxy/service/affil/product/v2")
	v.SetDefault("catalog.cart_base_url", "https://walmart.com")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.publisher_id", "")
	v.SetDefault("catalog.consumer_id", "")
	v.SetDefault("catalog.private_key_path", "")
	v.SetDefault("catalog.key_version", "1")
	v.SetDefault("catalog.timeout", 10*time.Second)

	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.timeout", 10*time.Second)

	v.SetDefault("queue.size", 100)
	v.SetDefault("queue.cooldown", time.Second)
	v.SetDefault("queue.job_timeout", 30*time.Minute)
	v.SetDefault("queue.log_buffer", 1024)
}

// LoadConfig reads config.yaml (if present) and the environment, applies
// defaults and validates the result. Environment variables use the CARTPILOT_
// prefix with dots replaced by underscores, e.g. CARTPILOT_QUEUE_COOLDOWN.
func LoadConfig() (*Config, error) {
	return Load(viper.New(), "")
}

// Load populates cfg from v. An explicit path overrides the config file search.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("CARTPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cartpilot")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints. Every problem found is reported.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.MaxItems < 1 || c.Server.MaxItems > 50 {
		errs = append(errs, fmt.Errorf("server.max_items must be between 1 and 50, got %d", c.Server.MaxItems))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.AI.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Fulfillment.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Fulfillment.Strategy == "catalog" {
		if err := c.Catalog.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Queue.Size < 1 {
		errs = append(errs, fmt.Errorf("queue.size must be positive, got %d", c.Queue.Size))
	}
	if c.Queue.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("queue.cooldown must not be negative"))
	}
	if c.Webhook.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook.timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (c DBConfig) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Host == "" || c.Database == "" {
			return fmt.Errorf("database.host and database.database are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q (expected sqlite or postgres)", c.Driver)
	}
	return nil
}

func (c AIConfig) Validate() error {
	switch c.Provider {
	case "none", "":
		if c.Enabled {
			return fmt.Errorf("ai.enabled requires ai.provider to be ollama or gemini")
		}
	case "ollama":
		if c.OllamaHost == "" {
			return fmt.Errorf("ai.ollama_host is required for the ollama provider")
		}
	case "gemini":
		if c.Enabled && c.GeminiAPIKey == "" {
			return fmt.Errorf("ai.gemini_api_key is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unsupported AI provider %q", c.Provider)
	}
	if c.Enabled && c.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	return nil
}

func (c FulfillmentConfig) Validate() error {
	if c.Strategy != "browser" && c.Strategy != "catalog" {
		return fmt.Errorf("unsupported fulfillment strategy %q (expected browser or catalog)", c.Strategy)
	}
	if c.Retailer != "walmart" {
		return fmt.Errorf("unsupported retailer %q", c.Retailer)
	}
	if c.MaxCandidates < 1 || c.MaxCandidates > 10 {
		return fmt.Errorf("fulfillment.max_candidates must be between 1 and 10, got %d", c.MaxCandidates)
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("fulfillment delays must satisfy 0 <= delay_min <= delay_max")
	}
	return nil
}

func (c CatalogConfig) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url is invalid: %w", err)
	}
	if c.APIKey == "" && (c.ConsumerID == "" || c.PrivateKeyPath == "") {
		return fmt.Errorf("catalog requires either api_key or consumer_id with private_key_path")
	}
	return nil
}
