// Package config handles configuration loading using viper.
package config

import (
	"fmt"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/log"
)

// Config is the top-level configuration for an extraction invocation.
type Config struct {
	// Mode selects the channel policy: "stereo" picks the two busiest
	// streams as independent channels, "mixed" keeps the capture as a
	// single source.
	Mode string `mapstructure:"mode"`

	// OutputDir is where final artifacts land. Empty means alongside the
	// input capture.
	OutputDir string `mapstructure:"output_dir"`

	// TempDir is the parent for invocation-scoped scratch directories.
	// Empty means the OS default.
	TempDir string `mapstructure:"temp_dir"`

	Codec CodecConfig `mapstructure:"codec"`
	Log   log.Config  `mapstructure:"log"`
}

// CodecConfig describes the external codec stage.
type CodecConfig struct {
	// Command is the external encoder invocation template. The channel
	// pcap paths, channel count and output path are appended as arguments.
	// Empty means no codec stage: extraction stops after producing the
	// per-channel captures.
	Command string `mapstructure:"command"`
}

// SelectionMode maps the configured mode string onto the selector input.
func (c *Config) SelectionMode() (core.SelectionMode, error) {
	switch c.Mode {
	case "", "stereo":
		return core.ModeStereo, nil
	case "mixed":
		return core.ModeMixed, nil
	default:
		return core.ModeStereo, fmt.Errorf("invalid mode %q (want stereo or mixed)", c.Mode)
	}
}
