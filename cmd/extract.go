package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/log"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
	"github.com/igorolhovskiy/rtpproxy/internal/session"
)

var (
	extractMode   string
	extractOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract <capture.pcap>",
	Short: "Extract stereo (or mono fallback) audio sources from a capture",
	Long: `Extract runs a full pass over the capture, classifies RTP streams by SSRC
and selects the two busiest streams as stereo channels A and B. With a single
stream, or with --mode mixed, the capture itself becomes the single source.

When a codec command is configured the selected channels are handed to it and
the audio artifact lands at --output; otherwise extraction stops after writing
the per-channel captures.

Examples:
  extractaudio extract call.pcap -o call.wav
  extractaudio extract call.pcap --mode mixed -o call.wav`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if extractMode != "" {
			cfg.Mode = extractMode
		}
		output := extractOutput
		if output == "" {
			output = args[0] + ".wav"
		}

		ex := session.NewExtractor(cfg, log.GetLogger())
		res, err := ex.Extract(ctx, args[0], output)
		if err != nil {
			if pcap.IsFatal(err) {
				exitWithError("capture is corrupt or unsupported", err)
			}
			exitWithError("extraction failed", err)
		}
		printResult(os.Stdout, res)
	},
}

func printResult(w io.Writer, res *session.Result) {
	fmt.Fprintf(w, "Records: %d  (non-IP: %d, dropped: %d, short RTP: %d)\n",
		res.Stats.TotalRecords, res.Stats.NonIP, res.Stats.Dropped, res.Stats.ShortRTP)
	for _, s := range res.Streams {
		fmt.Fprintf(w, "  stream 0x%08x: %d packets\n", s.SSRC, s.Packets)
	}
	fmt.Fprintf(w, "Selection: %s\n", res.Assignment.Reason)
	switch {
	case res.AudioPath != "":
		fmt.Fprintf(w, "Audio written to %s\n", res.AudioPath)
	default:
		for i, p := range res.ChannelPaths {
			fmt.Fprintf(w, "  channel %c: %s\n", 'A'+i, p)
		}
	}
}

func init() {
	extractCmd.Flags().StringVarP(&extractMode, "mode", "m", "",
		"channel policy: stereo or mixed (overrides config)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"output audio path (default <capture>.wav)")
}
