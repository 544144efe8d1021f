package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel        = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens    = 8192
	DefaultTemperature  = 0.7
	DefaultAgentType    = AgentTypePipeline
	DefaultBufSize      = 100
	DefaultLangfuseHost = "https://cloud.langfuse.com"
	// Seconds-resolution cron spec: every day at 09:00.
	DefaultReminderSpec = "0 0 9 * * *"
)

// Agent backend selectors. "pipeline" runs the explicit classify/extract/
// dispatch flow; "runtime" delegates the whole request to the agent SDK.
const (
	AgentTypePipeline = "pipeline"
	AgentTypeRuntime  = "runtime"
)

type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Provider  ProviderConfig  `json:"provider"`
	Langfuse  LangfuseConfig  `json:"langfuse"`
	Calendar  CalendarConfig  `json:"calendar"`
	Channels  ChannelsConfig  `json:"channels"`
	Reminders RemindersConfig `json:"reminders"`
}

type AgentConfig struct {
	Type        string  `json:"type"` // "pipeline" (default) or "runtime"
	Workspace   string  `json:"workspace"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

type ProviderConfig struct {
	Type    string `json:"type,omitempty"` // "anthropic" (default) or "openai"
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type LangfuseConfig struct {
	PublicKey string `json:"publicKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	Host      string `json:"host,omitempty"`
}

type CalendarConfig struct {
	CredentialsPath string `json:"credentialsPath,omitempty"`
	TokenPath       string `json:"tokenPath,omitempty"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
	Proxy     string   `json:"proxy,omitempty"`
}

type RemindersConfig struct {
	Enabled bool   `json:"enabled"`
	Spec    string `json:"spec,omitempty"`
	Channel string `json:"channel,omitempty"`
	To      string `json:"to,omitempty"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Agent: AgentConfig{
			Type:        DefaultAgentType,
			Workspace:   filepath.Join(home, ".taskpilot", "workspace"),
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		Provider: ProviderConfig{},
		Langfuse: LangfuseConfig{
			Host: DefaultLangfuseHost,
		},
		Calendar: CalendarConfig{
			CredentialsPath: filepath.Join(ConfigDir(), "credentials.json"),
			TokenPath:       filepath.Join(ConfigDir(), "token.json"),
		},
		Channels: ChannelsConfig{},
		Reminders: RemindersConfig{
			Enabled: false,
			Spec:    DefaultReminderSpec,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".taskpilot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("TASKPILOT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = "openai"
		}
	}
	if url := os.Getenv("TASKPILOT_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if url := os.Getenv("ANTHROPIC_BASE_URL"); url != "" && cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = url
	}
	if agentType := os.Getenv("TASKPILOT_AGENT"); agentType != "" {
		cfg.Agent.Type = agentType
	}
	if key := os.Getenv("LANGFUSE_PUBLIC_KEY"); key != "" {
		cfg.Langfuse.PublicKey = key
	}
	if key := os.Getenv("LANGFUSE_SECRET_KEY"); key != "" {
		cfg.Langfuse.SecretKey = key
	}
	if host := os.Getenv("LANGFUSE_HOST"); host != "" {
		cfg.Langfuse.Host = host
	}
	if token := os.Getenv("TASKPILOT_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if enabled := os.Getenv("TASKPILOT_REMINDERS_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			cfg.Reminders.Enabled = parsed
		}
	}

	if cfg.Agent.Type == "" {
		cfg.Agent.Type = DefaultAgentType
	}
	if cfg.Agent.Workspace == "" {
		cfg.Agent.Workspace = DefaultConfig().Agent.Workspace
	}
	if cfg.Agent.Model == "" {
		cfg.Agent.Model = DefaultModel
	}
	if cfg.Agent.MaxTokens <= 0 {
		cfg.Agent.MaxTokens = DefaultMaxTokens
	}
	if cfg.Langfuse.Host == "" {
		cfg.Langfuse.Host = DefaultLangfuseHost
	}
	if cfg.Reminders.Spec == "" {
		cfg.Reminders.Spec = DefaultReminderSpec
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
