package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate_Nil(t *testing.T) {
	var c *Config
	assert.NoError(t, c.Validate())
}

func TestConfigValidate_Valid(t *testing.T) {
	c := &Config{
		NetConnect: &NetConnectConfig{Disabled: true, Allow: []string{"localhost", "/ocalhos/"}},
		Logging:    &LoggingConfig{Level: "debug", Format: "json", EventsMaxSizeMB: 5},
	}
	assert.NoError(t, c.Validate())
}

func TestConfigValidate_BadLogLevel(t *testing.T) {
	c := &Config{Logging: &LoggingConfig{Level: "verbose"}}
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate_BadLogFormat(t *testing.T) {
	c := &Config{Logging: &LoggingConfig{Format: "xml"}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestConfigValidate_EmptyAllowEntry(t *testing.T) {
	c := &Config{NetConnect: &NetConnectConfig{Allow: []string{"localhost", ""}}}
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestConfigValidate_BlankAllowEntry(t *testing.T) {
	c := &Config{NetConnect: &NetConnectConfig{Allow: []string{"   "}}}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank entry")
}

func TestLoggingConfig_Defaults(t *testing.T) {
	var l *LoggingConfig
	assert.Equal(t, DefaultLogLevel, l.GetLogLevel())
	assert.Equal(t, DefaultLogFormat, l.GetLogFormat())
	assert.Equal(t, DefaultEventsMaxSizeMB, l.GetEventsMaxSizeMB())

	l = &LoggingConfig{Level: "warn", Format: "json", EventsMaxSizeMB: 3}
	assert.Equal(t, "warn", l.GetLogLevel())
	assert.Equal(t, "json", l.GetLogFormat())
	assert.Equal(t, 3, l.GetEventsMaxSizeMB())
}
