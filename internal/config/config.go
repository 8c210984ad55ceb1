package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultModel        = "claude-sonnet-4-5"
	DefaultMaxTokens    = 2048
	DefaultTable        = "Signals"
	DefaultProcessing   = "hourglass_with_flowing_sand"
	DefaultSuccess      = "white_check_mark"
	DefaultFailure      = "warning"
	DefaultWorkspaceURL = "https://app.slack.com"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Slack     SlackConfig     `toml:"slack"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	Airtable  AirtableConfig  `toml:"airtable"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type SlackConfig struct {
	BotToken     string `toml:"bot_token" validate:"required"`
	AppToken     string `toml:"app_token" validate:"required"`
	ChannelID    string `toml:"channel_id" validate:"required"`
	WorkspaceURL string `toml:"workspace_url"`

	// Reaction emoji names used as progress indicators.
	ProcessingReaction string `toml:"processing_reaction"`
	SuccessReaction    string `toml:"success_reaction"`
	FailureReaction    string `toml:"failure_reaction"`
}

type AnthropicConfig struct {
	APIKey    string `toml:"api_key" validate:"required"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

type AirtableConfig struct {
	APIKey string `toml:"api_key" validate:"required"`
	BaseID string `toml:"base_id" validate:"required"`
	Table  string `toml:"table"`
}

// Load reads the TOML config at path (a missing file is fine), applies
// environment overrides for secrets and identifiers, and validates that
// every required credential is present.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Slack: SlackConfig{
			WorkspaceURL:       DefaultWorkspaceURL,
			ProcessingReaction: DefaultProcessing,
			SuccessReaction:    DefaultSuccess,
			FailureReaction:    DefaultFailure,
		},
		Anthropic: AnthropicConfig{
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Airtable: AirtableConfig{
			Table: DefaultTable,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrideEnv(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	overrideEnv(&cfg.Slack.AppToken, "SLACK_APP_TOKEN")
	overrideEnv(&cfg.Slack.ChannelID, "SLACK_CHANNEL_ID")
	overrideEnv(&cfg.Slack.WorkspaceURL, "SLACK_WORKSPACE_URL")
	overrideEnv(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	overrideEnv(&cfg.Anthropic.Model, "ANTHROPIC_MODEL")
	overrideEnv(&cfg.Airtable.APIKey, "AIRTABLE_API_KEY")
	overrideEnv(&cfg.Airtable.BaseID, "AIRTABLE_BASE_ID")
	overrideEnv(&cfg.Airtable.Table, "AIRTABLE_TABLE")
}

func overrideEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
