package main

import (
	"github.com/spf13/viper"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

// configFromViper assembles the effective config from defaults, the config
// file, NETMOCK_* environment variables and flags, in increasing priority.
func configFromViper() (*api.Config, error) {
	if configReadErr != nil {
		return nil, errx.Wrap(ErrLoadConfig, configReadErr)
	}
	cfg := &api.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, errx.Wrap(ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errx.Wrap(ErrLoadConfig, err)
	}
	return cfg, nil
}
