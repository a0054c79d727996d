package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	ControlBot ControlBotConfig `yaml:"controlBot"`
	LLM        LLMConfig        `yaml:"llm"`
	Reply      ReplyConfig      `yaml:"reply"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MetricsPort     int           `yaml:"metricsPort"`
}

// TelegramConfig configures the primary client session.
type TelegramConfig struct {
	AppID    int         `yaml:"appID"`
	AppHash  string      `yaml:"appHash"`
	Channels []string    `yaml:"channels"`
	Proxy    ProxyConfig `yaml:"proxy"`
}

// ProxyConfig optionally routes the primary client through a SOCKS5 proxy.
type ProxyConfig struct {
	Type   string `yaml:"type"`
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`
}

// Enabled reports whether a proxy is fully configured.
func (p ProxyConfig) Enabled() bool {
	return p.Type != "" && p.Server != "" && p.Port != 0
}

// ControlBotConfig configures the secondary bot used as the credential-relay
// control surface.
type ControlBotConfig struct {
	Token          string        `yaml:"token"`
	ChatID         string        `yaml:"chatID"`
	PromptTimeout  time.Duration `yaml:"promptTimeout"`
	PollingTimeout time.Duration `yaml:"pollingTimeout"`
	WebhookSecret  string        `yaml:"webhookSecret"`
}

type LLMConfig struct {
	Gemini GeminiConfig `yaml:"gemini"`
}

type GeminiConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseURL"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"maxRetries"`
	Temperature float64       `yaml:"temperature"`
}

// ReplyConfig holds the fixed delivery material sent with every reply.
type ReplyConfig struct {
	PortfolioURL   string `yaml:"portfolioURL"`
	AttachmentPath string `yaml:"attachmentPath"`
}

type DatabaseConfig struct {
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type SQLiteConfig struct {
	Path              string `yaml:"path"`
	MaxOpenConns      int    `yaml:"maxOpenConns"`
	PragmaJournalMode string `yaml:"pragmaJournalMode"`
	PragmaBusyTimeout int    `yaml:"pragmaBusyTimeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file, expands ${ENV} references, and validates
// the result. Validation failures here are fatal at startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MetricsPort:     9090,
		},
		ControlBot: ControlBotConfig{
			PromptTimeout:  10 * time.Minute,
			PollingTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			Gemini: GeminiConfig{
				BaseURL:     "https://generativelanguage.googleapis.com",
				Model:       "gemini-pro",
				Timeout:     60 * time.Second,
				MaxRetries:  1,
				Temperature: 0.7,
			},
		},
		Reply: ReplyConfig{
			AttachmentPath: "resume.pdf",
		},
		Database: DatabaseConfig{
			SQLite: SQLiteConfig{
				Path:              "uxwatch.db",
				MaxOpenConns:      1,
				PragmaJournalMode: "wal",
				PragmaBusyTimeout: 5000,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
