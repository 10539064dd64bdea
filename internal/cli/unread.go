package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swaploop/swaploop/internal/client"
)

var badgeText = color.New(color.FgGreen, color.Bold)

// UnreadCmd returns the unread command
func UnreadCmd() *cobra.Command {
	var swaps []string
	var ceiling int

	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Show unread message badges",
		Long: `Show the global unread badge and the per-swap breakdown.

With --swaps, also prints the combined badge for just those swaps (the
per-tab view).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, userID, err := newGateway()
			if err != nil {
				return err
			}

			agg := client.NewUnreadAggregator(gateway, userID,
				client.WithBadgeCeiling(ceiling))
			agg.Refresh(cmd.Context())

			if badge := agg.BadgeLabel(agg.Total()); badge != "" {
				badgeText.Printf("total: %s\n", badge)
			} else {
				fmt.Println("no unread messages")
			}

			for id, count := range agg.Swaps() {
				fmt.Printf("  %s  %s\n", id, agg.BadgeLabel(count))
			}

			if len(swaps) > 0 {
				if badge := agg.BadgeLabel(agg.ForSet(swaps)); badge != "" {
					badgeText.Printf("selected tabs: %s\n", badge)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&swaps, "swaps", nil, "swap ids to sum into one badge")
	cmd.Flags().IntVar(&ceiling, "ceiling", client.DefaultBadgeCeiling, "badge display ceiling")

	return cmd
}
