// Package config provides shared configuration patterns and defaults for
// arc-trust tools.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Common contains default values shared across arc-trust commands.
var Common = struct {
	DataDir   string
	LogLevel  string
	LogFormat string
	Output    string
}{
	DataDir:   DefaultDataDir(),
	LogLevel:  "info",
	LogFormat: "text",
	Output:    "text",
}

// DefaultDataDir returns the default data directory (~/.arc-trust).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arc-trust"
	}
	return filepath.Join(home, ".arc-trust")
}

// SetCommonDefaults configures standard defaults on a Viper instance.
func SetCommonDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", Common.DataDir)
	v.SetDefault("output", Common.Output)
	v.SetDefault("observability.log_level", Common.LogLevel)
	v.SetDefault("observability.log_format", Common.LogFormat)
}

// BindCommonFlags binds standard CLI flags to Viper.
func BindCommonFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()

	f.String("data-dir", "", "data directory (default ~/.arc-trust)")
	f.String("config", "", "config file path")
	f.StringP("output", "o", "", "output format (text, json)")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (json, text)")

	_ = v.BindPFlag("data_dir", f.Lookup("data-dir"))
	_ = v.BindPFlag("output", f.Lookup("output"))
	_ = v.BindPFlag("observability.log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("observability.log_format", f.Lookup("log-format"))
}

// Load reads config from flags, env, and file. Environment variables use
// the ARCTRUST_ prefix. A missing config file is only an error when one was
// named explicitly.
func Load(v *viper.Viper, configFile string, configPaths ...string) error {
	SetCommonDefaults(v)

	v.SetEnvPrefix("ARCTRUST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) && configFile != "" {
			return err
		}
	}

	return nil
}
