// Package config loads the client configuration from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultOperationTTL   = time.Hour
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultUserAgent      = "jira-agile-client/0.1.0"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira    JiraConfig
	Webhook WebhookConfig
	Cache   CacheConfig
	Log     LogConfig
}

// JiraConfig holds the Jira site and credentials.
type JiraConfig struct {
	URL       string
	Email     string
	Token     string
	JQL       string
	UserAgent string
	Timeout   time.Duration
}

// WebhookConfig holds what the webhook registrar needs.
type WebhookConfig struct {
	AppHost               string
	IntegrationIdentifier string
}

// CacheConfig selects the operation cache backend. An empty RedisURL keeps
// operations in memory.
type CacheConfig struct {
	RedisURL     string
	OperationTTL time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// bindings maps config keys to their environment variables.
var bindings = map[string]string{
	"jira.url":                       "JIRA_URL",
	"jira.email":                     "JIRA_EMAIL",
	"jira.token":                     "JIRA_TOKEN",
	"jira.jql":                       "JIRA_JQL",
	"jira.user_agent":                "USER_AGENT",
	"jira.timeout":                   "REQUEST_TIMEOUT",
	"webhook.app_host":               "APP_HOST",
	"webhook.integration_identifier": "INTEGRATION_IDENTIFIER",
	"cache.redis_url":                "REDIS_URL",
	"cache.operation_ttl":            "OPERATION_TTL",
	"log.level":                      "LOG_LEVEL",
	"log.pretty":                     "LOG_PRETTY",
}

// Load reads configuration from the environment. When path is non-empty the
// file is read first and environment variables override its values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetDefault("jira.user_agent", DefaultUserAgent)
	v.SetDefault("jira.timeout", DefaultRequestTimeout)
	v.SetDefault("cache.operation_ttl", DefaultOperationTTL)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Jira: JiraConfig{
			URL:       v.GetString("jira.url"),
			Email:     v.GetString("jira.email"),
			Token:     v.GetString("jira.token"),
			JQL:       v.GetString("jira.jql"),
			UserAgent: v.GetString("jira.user_agent"),
			Timeout:   v.GetDuration("jira.timeout"),
		},
		Webhook: WebhookConfig{
			AppHost:               v.GetString("webhook.app_host"),
			IntegrationIdentifier: v.GetString("webhook.integration_identifier"),
		},
		Cache: CacheConfig{
			RedisURL:     v.GetString("cache.redis_url"),
			OperationTTL: v.GetDuration("cache.operation_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
	}

	if cfg.Jira.Timeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", cfg.Jira.Timeout)
	}
	if cfg.Cache.OperationTTL <= 0 {
		return nil, fmt.Errorf("OPERATION_TTL must be positive, got %s", cfg.Cache.OperationTTL)
	}

	return cfg, nil
}

// ValidateJira reports every missing variable needed to reach Jira.
func (c *Config) ValidateJira() error {
	return missing(c.missingJira())
}

// ValidateWebhook reports every missing variable needed to register the
// webhook, including the Jira ones.
func (c *Config) ValidateWebhook() error {
	missingVars := c.missingJira()

	if c.Webhook.AppHost == "" {
		missingVars = append(missingVars, "APP_HOST")
	}
	if c.Webhook.IntegrationIdentifier == "" {
		missingVars = append(missingVars, "INTEGRATION_IDENTIFIER")
	}

	return missing(missingVars)
}

func (c *Config) missingJira() []string {
	var missingVars []string

	if c.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if c.Jira.Email == "" {
		missingVars = append(missingVars, "JIRA_EMAIL")
	}
	if c.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	return missingVars
}

func missing(vars []string) error {
	if len(vars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", vars)
	}
	return nil
}
