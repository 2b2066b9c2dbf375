package diagnostic

import (
	"strings"

	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

// LoadConfig reads the tool configuration: a chapbook-ls config file in the
// working directory, overridden by CHAPBOOK_LS_* environment variables. A
// missing file falls back to defaults.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("chapbook-ls")
	v.AddConfigPath(".")
	v.SetEnvPrefix("CHAPBOOK_LS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("unknown-macro-warnings", defaults.UnknownMacroWarnings)
	v.SetDefault("unset-variable-warnings", defaults.UnsetVariableWarnings)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
