package api

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jingkaihe/netmock/internal/errx"
)

const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultEventsMaxSizeMB = 10
)

// Config is the file/flag configuration consumed by the CLI and by
// netmock.NewInstanceFromConfig.
type Config struct {
	NetConnect *NetConnectConfig `json:"net_connect,omitempty" mapstructure:"net_connect" validate:"omitempty"`
	Logging    *LoggingConfig    `json:"logging,omitempty" mapstructure:"logging" validate:"omitempty"`
}

// NetConnectConfig seeds the allow-list policy.
//
// Allow entries use the same syntax as the CLI: "all" (or "*") allows every
// host, "/expr/" is a regular expression, anything else is a hostname
// substring.
type NetConnectConfig struct {
	Disabled bool     `json:"disabled,omitempty" mapstructure:"disabled"`
	Allow    []string `json:"allow,omitempty" mapstructure:"allow" validate:"dive,required"`
}

// LoggingConfig controls slog output and the optional JSONL event file.
type LoggingConfig struct {
	Level           string `json:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format          string `json:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=text json"`
	EventsFile      string `json:"events_file,omitempty" mapstructure:"events_file"`
	EventsMaxSizeMB int    `json:"events_max_size_mb,omitempty" mapstructure:"events_max_size_mb" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := validate.Struct(c); err != nil {
		return errx.Wrap(ErrInvalidConfig, err)
	}
	if c.NetConnect != nil {
		for _, entry := range c.NetConnect.Allow {
			if strings.TrimSpace(entry) == "" {
				return errx.With(ErrInvalidConfig, ": net_connect.allow contains a blank entry")
			}
		}
	}
	return nil
}

// GetLogLevel returns the configured level or the default.
func (l *LoggingConfig) GetLogLevel() string {
	if l != nil && l.Level != "" {
		return l.Level
	}
	return DefaultLogLevel
}

// GetLogFormat returns the configured format or the default.
func (l *LoggingConfig) GetLogFormat() string {
	if l != nil && l.Format != "" {
		return l.Format
	}
	return DefaultLogFormat
}

// GetEventsMaxSizeMB returns the rotation size for the events file.
func (l *LoggingConfig) GetEventsMaxSizeMB() int {
	if l != nil && l.EventsMaxSizeMB > 0 {
		return l.EventsMaxSizeMB
	}
	return DefaultEventsMaxSizeMB
}
