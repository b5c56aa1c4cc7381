package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ApplyFile overlays settings from a viper-readable config file (yaml, toml,
// json) onto cfg. Only keys present in the file are overridden, everything
// else keeps its environment-derived value.
func ApplyFile(cfg *Service, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	set := map[string]func(*viper.Viper, string){
		"custodian.base_url": func(v *viper.Viper, key string) { cfg.Custodian.BaseURL = v.GetString(key) },
		"custodian.api_key":  func(v *viper.Viper, key string) { cfg.Custodian.APIKey = v.GetString(key) },
		"custodian.timeout_ms": func(v *viper.Viper, key string) {
			cfg.Custodian.Timeout = time.Duration(v.GetInt(key)) * time.Millisecond
		},
		"server.listen_address": func(v *viper.Viper, key string) {
			cfg.Echo.ListenAddress = v.GetString(key)
		},
		"server.api_key":        func(v *viper.Viper, key string) { cfg.Echo.APIKey = v.GetString(key) },
		"server.enable_metrics": func(v *viper.Viper, key string) { cfg.Echo.EnableMetrics = v.GetBool(key) },
		"keystore.path":         func(v *viper.Viper, key string) { cfg.Keystore.Path = v.GetString(key) },
		"keystore.passphrase":   func(v *viper.Viper, key string) { cfg.Keystore.Passphrase = v.GetString(key) },
		"keystore.light_kdf":    func(v *viper.Viper, key string) { cfg.Keystore.LightKDF = v.GetBool(key) },
		"logger.level":          func(v *viper.Viper, key string) { cfg.Logger.Level = v.GetString(key) },
		"logger.pretty_print_console": func(v *viper.Viper, key string) {
			cfg.Logger.PrettyPrintConsole = v.GetBool(key)
		},
	}

	for key, apply := range set {
		if v.IsSet(key) {
			apply(v, key)
		}
	}

	return nil
}
