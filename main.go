// Package main is the entry point for the extractaudio tool.
package main

import (
	"fmt"
	"os"

	"github.com/igorolhovskiy/rtpproxy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
