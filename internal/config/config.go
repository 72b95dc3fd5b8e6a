package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "TECH_NEWS_CONFIG"
	webhookURLEnv = "DISCORD_WEBHOOK_URL"
	dryRunEnv     = "DRY_RUN"

	ProviderClaude  = "claude"
	ProviderChatGPT = "chatgpt"
	ProviderGemini  = "gemini"
)

// Duration wraps time.Duration so YAML values like "500ms" decode directly.
type Duration time.Duration

// UnmarshalYAML parses a duration string node.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all settings required across one run. It is constructed once
// at startup and passed explicitly into each component.
type Config struct {
	Logging      LoggingConfig  `yaml:"logging"`
	Keywords     []string       `yaml:"keywords"`
	Scoring      ScoringConfig  `yaml:"scoring"`
	Sources      []SourceConfig `yaml:"sources"`
	AI           AIConfig       `yaml:"ai"`
	Discord      DiscordConfig  `yaml:"discord"`
	FetchTimeout Duration       `yaml:"fetchTimeout"`
	DryRun       bool           `yaml:"-"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScoringConfig holds the keyword match weights. Title matches count more
// than body matches; the exact ratio is tunable.
type ScoringConfig struct {
	TitleWeight float64 `yaml:"titleWeight"`
	BodyWeight  float64 `yaml:"bodyWeight"`
}

// SourceConfig describes one configured feed origin.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	MaxItems int    `yaml:"maxItems"`
}

// AIConfig selects and tunes the summarization provider. Exactly one provider
// is active per run and the selection never changes mid-run.
type AIConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Provider       string   `yaml:"provider"`
	Model          string   `yaml:"model"`
	MaxTokens      int      `yaml:"maxTokens"`
	MaxArticles    int      `yaml:"maxArticles"`
	SummaryPrompt  string   `yaml:"summaryPrompt"`
	MaxAttempts    int      `yaml:"maxAttempts"`
	RetryBaseDelay Duration `yaml:"retryBaseDelay"`
	CallInterval   Duration `yaml:"callInterval"`
}

// DiscordConfig wires the outbound webhook channel. Accents maps source ids
// to embed color codes.
type DiscordConfig struct {
	WebhookURL string         `yaml:"-"`
	Username   string         `yaml:"username"`
	AvatarURL  string         `yaml:"avatarUrl"`
	Accents    map[string]int `yaml:"accents"`
}

// Load reads the YAML file at path (or $TECH_NEWS_CONFIG when path is empty),
// applies environment overrides, and validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path == "" {
		path = "config/settings.yaml"
	}

	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Discord.WebhookURL = v
	}
	if v := os.Getenv(dryRunEnv); strings.EqualFold(v, "true") {
		c.DryRun = true
	}
}

func (c *Config) applyDefaults() {
	if c.Scoring.TitleWeight == 0 {
		c.Scoring.TitleWeight = 2.0
	}
	if c.Scoring.BodyWeight == 0 {
		c.Scoring.BodyWeight = 1.0
	}
	for i := range c.Sources {
		if c.Sources[i].MaxItems <= 0 {
			c.Sources[i].MaxItems = 20
		}
	}
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderClaude
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 500
	}
	if c.AI.MaxArticles <= 0 {
		c.AI.MaxArticles = 10
	}
	if c.AI.MaxAttempts <= 0 {
		c.AI.MaxAttempts = 3
	}
	if c.AI.RetryBaseDelay == 0 {
		c.AI.RetryBaseDelay = Duration(2 * time.Second)
	}
	if c.AI.CallInterval == 0 {
		c.AI.CallInterval = Duration(defaultCallInterval(c.AI.Provider))
	}
	if c.Discord.Username == "" {
		c.Discord.Username = "Tech News Bot"
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(20 * time.Second)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// defaultCallInterval mirrors per-provider burst limits; the Gemini free tier
// allows roughly two requests per minute, hence the much longer spacing.
func defaultCallInterval(provider string) time.Duration {
	if provider == ProviderGemini {
		return 5 * time.Second
	}
	return 500 * time.Millisecond
}

// Validate reports the first fatal configuration problem. A failed validation
// aborts the run before any network call.
func (c Config) Validate() error {
	if len(c.Keywords) == 0 {
		return fmt.Errorf("config: at least one keyword is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: at least one source is required")
	}
	seen := map[string]struct{}{}
	for i, src := range c.Sources {
		if src.ID == "" || src.URL == "" {
			return fmt.Errorf("config: sources[%d] requires id and url", i)
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("config: duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	if c.Scoring.TitleWeight <= 0 || c.Scoring.BodyWeight <= 0 {
		return fmt.Errorf("config: scoring weights must be positive")
	}
	switch c.AI.Provider {
	case ProviderClaude, ProviderChatGPT, ProviderGemini:
	default:
		return fmt.Errorf("config: unsupported ai provider %q", c.AI.Provider)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Scoring: ScoringConfig{TitleWeight: 2.0, BodyWeight: 1.0},
		AI: AIConfig{
			Enabled:     true,
			Provider:    ProviderClaude,
			MaxTokens:   500,
			MaxArticles: 10,
			MaxAttempts: 3,
		},
	}
}
