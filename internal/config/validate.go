package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	if cfg.Telegram.AppID <= 0 {
		errs = append(errs, "telegram.appID must be a positive integer")
	}
	if cfg.Telegram.AppHash == "" {
		errs = append(errs, "telegram.appHash is required")
	}
	if len(activeChannels(cfg.Telegram.Channels)) == 0 {
		errs = append(errs, "telegram.channels must list at least one channel")
	}

	if cfg.Telegram.Proxy.Type != "" {
		if !strings.EqualFold(cfg.Telegram.Proxy.Type, "socks5") {
			errs = append(errs, fmt.Sprintf("telegram.proxy.type must be socks5 (got %q)", cfg.Telegram.Proxy.Type))
		}
		if cfg.Telegram.Proxy.Server == "" {
			errs = append(errs, "telegram.proxy.server is required when a proxy type is set")
		}
		if cfg.Telegram.Proxy.Port <= 0 || cfg.Telegram.Proxy.Port > 65535 {
			errs = append(errs, "telegram.proxy.port must be between 1 and 65535")
		}
	}

	if cfg.ControlBot.Token == "" {
		errs = append(errs, "controlBot.token is required")
	}
	if cfg.ControlBot.ChatID == "" {
		errs = append(errs, "controlBot.chatID is required")
	} else if _, err := strconv.ParseInt(cfg.ControlBot.ChatID, 10, 64); err != nil {
		errs = append(errs, fmt.Sprintf("controlBot.chatID must be a numeric chat id (got %q)", cfg.ControlBot.ChatID))
	}

	if cfg.LLM.Gemini.APIKey == "" {
		errs = append(errs, "llm.gemini.apiKey is required")
	}
	if cfg.LLM.Gemini.BaseURL == "" {
		errs = append(errs, "llm.gemini.baseURL is required")
	}

	if cfg.Reply.PortfolioURL == "" {
		errs = append(errs, "reply.portfolioURL is required")
	}

	if cfg.Database.SQLite.Path == "" {
		errs = append(errs, "database.sqlite.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// activeChannels drops empty entries, which the comma-separated environment
// form produces easily.
func activeChannels(channels []string) []string {
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if strings.TrimSpace(ch) != "" {
			out = append(out, strings.TrimSpace(ch))
		}
	}
	return out
}

// ActiveChannels returns the cleaned monitored channel identifiers.
func (c *TelegramConfig) ActiveChannels() []string {
	return activeChannels(c.Channels)
}
