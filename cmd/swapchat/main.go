package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swaploop/swaploop/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "swapchat",
		Short: "swapchat - messaging client for swaploop",
		Long: `swapchat is a terminal client for swaploop's in-swap messaging:
open a swap's conversation thread, send messages, and check unread badges.`,
	}

	rootCmd.AddCommand(cli.ThreadCmd())
	rootCmd.AddCommand(cli.SendCmd())
	rootCmd.AddCommand(cli.UnreadCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
