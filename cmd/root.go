// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/config"
	"github.com/igorolhovskiy/rtpproxy/internal/log"
)

var (
	// Global flags
	configFile string
	verbose    bool

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "extractaudio",
	Short: "Recover per-call audio from RTP packet captures",
	Long: `extractaudio recovers per-call audio from network packet captures of RTP media.

It normalizes null/loopback, Linux cooked and Ethernet captures into a uniform
IP/UDP/RTP view, groups packets into streams by SSRC, and picks the two legs of
a call as true stereo channels (with a mono fallback when only one stream
exists or mixed output is requested).`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		log.Init(cfg.Log)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"debug logging")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(splitCmd)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
