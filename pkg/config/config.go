package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envConfigPath = "POLYGLOT_CONFIG"
	envRelayURL   = "POLYGLOT_RELAY_URL"
	envUsername   = "POLYGLOT_USERNAME"

	defaultUsername       = "Anonymous"
	defaultTargetLanguage = "Spanish"
	defaultProvider       = "openai"
	defaultModel          = "gpt-5.2"
	defaultRelayURL       = "ws://127.0.0.1:18900/ws"
	defaultRelayHost      = "0.0.0.0"
	defaultRelayPort      = 18900
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Profile     ProfileConfig     `json:"profile"`
	Translation TranslationConfig `json:"translation"`
	Providers   ProvidersConfig   `json:"providers"`
	Network     NetworkConfig     `json:"network"`
	Relay       RelayConfig       `json:"relay"`
	Logging     LoggingConfig     `json:"logging,omitempty"`
}

// ProfileConfig holds the local user's chat identity.
type ProfileConfig struct {
	Username string `json:"username"`
}

// TranslationConfig controls the translation pipeline.
type TranslationConfig struct {
	Disabled       bool   `json:"disabled,omitempty"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}

// Enabled reports whether the translation worker should run at all.
func (c TranslationConfig) Enabled() bool {
	return !c.Disabled
}

// ProvidersConfig stores per-provider connection settings.
type ProvidersConfig struct {
	OpenAI    OpenAIProviderConfig    `json:"openai"`
	Anthropic AnthropicProviderConfig `json:"anthropic"`
	OpenCode  OpenCodeProviderConfig  `json:"opencode"`
}

// OpenAIProviderConfig configures the OpenAI provider client.
type OpenAIProviderConfig struct {
	BaseURL               string `json:"base_url"`
	Organization          string `json:"organization"`
	Project               string `json:"project"`
	APIKeyEnv             string `json:"api_key_env"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// AnthropicProviderConfig configures the Anthropic provider client.
type AnthropicProviderConfig struct {
	BaseURL               string `json:"base_url"`
	APIKeyEnv             string `json:"api_key_env"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// OpenCodeProviderConfig configures the OpenCode provider client.
type OpenCodeProviderConfig struct {
	BaseURL               string `json:"base_url"`
	Username              string `json:"username"`
	PasswordEnv           string `json:"password_env"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// NetworkConfig configures how the client reaches the relay substrate.
type NetworkConfig struct {
	RelayURL string `json:"relay_url"`
}

// RelayConfig configures relay server bind settings.
type RelayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig controls structured log output format and verbosity. The TUI
// owns the terminal, so File points logs somewhere that does not clobber it.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
	File      string `json:"file,omitempty"`
}

// Default returns the configuration used when no config.json exists.
func Default() *Config {
	return &Config{
		Profile: ProfileConfig{Username: defaultUsername},
		Translation: TranslationConfig{
			TargetLanguage: defaultTargetLanguage,
			Provider:       defaultProvider,
			Model:          defaultModel,
		},
		Network: NetworkConfig{RelayURL: defaultRelayURL},
		Relay:   RelayConfig{Host: defaultRelayHost, Port: defaultRelayPort},
	}
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides. A missing config file yields the defaults rather than an error;
// chatting should work out of the box.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills required values a partial config file left out.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Profile.Username) == "" {
		cfg.Profile.Username = defaultUsername
	}
	if strings.TrimSpace(cfg.Translation.TargetLanguage) == "" {
		cfg.Translation.TargetLanguage = defaultTargetLanguage
	}
	if strings.TrimSpace(cfg.Translation.Provider) == "" {
		cfg.Translation.Provider = defaultProvider
	}
	if strings.TrimSpace(cfg.Translation.Model) == "" {
		cfg.Translation.Model = defaultModel
	}
	if strings.TrimSpace(cfg.Network.RelayURL) == "" {
		cfg.Network.RelayURL = defaultRelayURL
	}
	if strings.TrimSpace(cfg.Relay.Host) == "" {
		cfg.Relay.Host = defaultRelayHost
	}
	if cfg.Relay.Port == 0 {
		cfg.Relay.Port = defaultRelayPort
	}
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if url := strings.TrimSpace(os.Getenv(envRelayURL)); url != "" {
		cfg.Network.RelayURL = url
	}
	if username := strings.TrimSpace(os.Getenv(envUsername)); username != "" {
		cfg.Profile.Username = username
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is POLYGLOT_CONFIG first, then cwd-local fallback paths, then
// ~/.config/polyglot/config.json. An empty path means "use defaults".
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			filepath.Join(cwd, "config.json"),
			filepath.Join(cwd, "config", "config.json"),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "polyglot", "config.json"))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
