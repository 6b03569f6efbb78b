package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/log"
	"github.com/igorolhovskiy/rtpproxy/internal/session"
)

var splitCmd = &cobra.Command{
	Use:   "split <capture.pcap> <output-prefix>",
	Short: "Split a capture into one pcap per RTP stream (SSRC)",
	Long: `Split writes one Ethernet-framed pcap per SSRC observed in the capture,
named <output-prefix>_0x<ssrc>.pcap. Concurrent invocations sharing a
directory must use distinct prefixes.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ex := session.NewExtractor(cfg, log.GetLogger())
		paths, err := ex.Split(cmd.Context(), args[0], args[1])
		if err != nil {
			exitWithError("split failed", err)
		}
		fmt.Printf("Split %d streams:\n  %s\n", len(paths), strings.Join(paths, "\n  "))
	},
}
