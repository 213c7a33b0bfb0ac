package cli

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps global flags to the config keys they override.
var flagKeys = map[string]string{
	"api-url":    "api.base_url",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"db":         "storage.db_path",
}

// BindGlobalFlags makes explicitly set global flags take precedence over
// the config file and environment.
func BindGlobalFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// ConfigFile returns the --config value.
func ConfigFile(flags *pflag.FlagSet) string {
	file, _ := flags.GetString("config")
	return file
}
