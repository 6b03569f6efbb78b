package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file with environment
// overrides (EXTRACTAUDIO_MODE, EXTRACTAUDIO_LOG_LEVEL, ...). An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("mode", "stereo")
	v.SetDefault("output_dir", "")
	v.SetDefault("temp_dir", "")
	v.SetDefault("codec.command", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("EXTRACTAUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := cfg.SelectionMode(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
