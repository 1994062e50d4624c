package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds settings shared by the commands. Values come from flags,
// JSONAPI_* environment variables and .jsonapi.yaml, in that order.
type Config struct {
	Manifest string `mapstructure:"manifest"`
	Lang     string `mapstructure:"lang"`
	Strict   bool   `mapstructure:"strict"`
	NoColor  bool   `mapstructure:"no_color"`
}

// LoadConfig reads .jsonapi.yaml from dir (if present) and binds the
// persistent flags of cmd.
func LoadConfig(cmd *cobra.Command, dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("lang", "en")
	v.SetDefault("strict", false)
	v.SetDefault("no_color", false)

	v.SetConfigName(".jsonapi")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("JSONAPI")
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"manifest": "manifest",
		"lang":     "lang",
		"strict":   "strict",
		"no_color": "no-color",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Lang != "en" && cfg.Lang != "ja" {
		return nil, fmt.Errorf("lang must be en or ja, got: %s", cfg.Lang)
	}
	return &cfg, nil
}
