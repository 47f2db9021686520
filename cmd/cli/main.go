package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &clientOptions{}

	rootCmd := &cobra.Command{
		Use:           "zionledger-cli",
		Short:         "ZionLedger CLI tool",
		Long:          `A command line interface for interacting with the ZionLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("ZIONLEDGER_URL", "http://localhost:8080"), "Base URL of the ZionLedger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.secret, "secret", os.Getenv("INTERNAL_SECRET"), "Value sent as X-Internal-Secret")

	rootCmd.AddCommand(
		entrySetsCmd(opts),
		balancesCmd(opts),
		entriesCmd(opts),
		ledgerCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
