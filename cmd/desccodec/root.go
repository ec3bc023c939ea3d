package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	Verbose bool

	logHandler = btclog.NewDefaultHandler(os.Stderr).SubSystem("DESC")
	log        = btclog.NewSLogger(logHandler)
)

var rootCmd = &cobra.Command{
	Use:   "desccodec",
	Short: "Compact binary codec for bitcoin output descriptors",
	Long: `Desccodec converts bitcoin output descriptors between their
human-readable textual form and a compact binary form roughly 30-40%
smaller. The conversion is lossless: decoding reproduces the original
descriptor with its checksum re-derived.`,
	Version: version,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if Verbose {
			logHandler.SetLevel(btclog.LevelDebug)
		} else {
			logHandler.SetLevel(btclog.LevelInfo)
		}

		log.Debugf("desccodec version v%s", version)
	},
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(
		&Verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(
		newEncodeCommand(),
		newDecodeCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
