package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.pcap> <out.pcap>",
	Short: "Re-frame a capture (e.g. Linux cooked) as an Ethernet capture",
	Long: `Convert rewrites a capture into Ethernet framing so downstream tools that
only understand Ethernet captures can consume it. Only IPv4/UDP packets
survive; IP options are stripped and checksums recomputed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		in, err := os.Open(args[0])
		if err != nil {
			exitWithError("open input", err)
		}
		defer in.Close()

		out, err := os.Create(args[1])
		if err != nil {
			exitWithError("create output", err)
		}

		n, err := pcap.ConvertToEthernet(in, out)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(args[1])
			exitWithError("conversion failed", err)
		}
		fmt.Printf("Converted %d packets to %s\n", n, args[1])
	},
}
