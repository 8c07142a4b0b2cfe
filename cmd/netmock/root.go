package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/netmock/pkg/api"
)

const envPrefix = "NETMOCK"

// configReadErr holds the failure from reading --config, reported by
// configFromViper so a broken config file never falls back to defaults.
var configReadErr error

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "netmock",
		Short:         "Inspect how netmock classifies outgoing HTTP requests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error.")
	cmd.PersistentFlags().String("log-format", "", "Logging format: text|json.")
	cmd.PersistentFlags().String("events-file", "", "Append decision events as JSON lines to this file.")

	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.events_file", cmd.PersistentFlags().Lookup("events-file"))

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func initViperDefaults() {
	viper.SetDefault("logging.level", api.DefaultLogLevel)
	viper.SetDefault("logging.format", api.DefaultLogFormat)
	viper.SetDefault("logging.events_max_size_mb", api.DefaultEventsMaxSizeMB)
	viper.SetDefault("net_connect.disabled", false)
}

func initConfig() {
	configReadErr = nil
	initViperDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		configReadErr = fmt.Errorf("read %s: %w", cfgFile, err)
	}
}
