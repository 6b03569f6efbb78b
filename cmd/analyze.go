package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
	"github.com/igorolhovskiy/rtpproxy/internal/log"
	"github.com/igorolhovskiy/rtpproxy/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.pcap>",
	Short: "Show RTP streams in a capture without extracting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ex := session.NewExtractor(cfg, log.GetLogger())
		rep, err := ex.Analyze(cmd.Context(), args[0])
		if err != nil {
			exitWithError("analysis failed", err)
		}

		fmt.Printf("Capture format: %s\n", rep.Stats.LinkType)
		fmt.Printf("Total records: %d\n", rep.Stats.TotalRecords)
		fmt.Printf("Non-IP records: %d\n", rep.Stats.NonIP)
		fmt.Printf("Dropped packets: %d\n", rep.Stats.Dropped+rep.Stats.ShortRTP)
		fmt.Printf("RTP streams: %d\n", len(rep.Streams))
		for _, s := range rep.Streams {
			fmt.Printf("  SSRC 0x%08x: %d packets, duration %.2fs\n",
				s.SSRC, s.Packets, s.Duration.Seconds())
		}

		switch rep.Preview.Reason {
		case core.Selected:
			fmt.Printf("Selection preview: channel A 0x%08x, channel B 0x%08x\n",
				rep.Preview.ChannelA, rep.Preview.ChannelB)
		default:
			fmt.Printf("Selection preview: %s\n", rep.Preview.Reason)
		}
	},
}
