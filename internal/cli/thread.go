package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swaploop/swaploop/internal/client"
)

var (
	dayHeader  = color.New(color.FgCyan, color.Bold)
	systemText = color.New(color.FgYellow)
	failedText = color.New(color.FgRed)
	noticeText = color.New(color.FgMagenta)
)

// ThreadCmd returns the thread command
func ThreadCmd() *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "thread <swap-id>",
		Short: "Open a swap's conversation thread",
		Long: `Open the message thread for a swap, grouped by day.

Unread messages addressed to you are marked read on open. With --watch the
thread keeps refreshing until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, userID, err := newGateway()
			if err != nil {
				return err
			}

			conv := client.NewConversation(gateway, args[0], userID,
				client.WithRefreshInterval(interval))
			defer conv.Close()

			ctx := cmd.Context()
			if err := conv.Open(ctx); err != nil {
				// The view model keeps whatever it has; show that plus the notice.
				renderThread(conv.Snapshot())
				return err
			}
			renderThread(conv.Snapshot())

			if !watch {
				return nil
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(interval):
				}
				if err := conv.Refresh(ctx); err != nil {
					noticeText.Println(conv.Snapshot().Notice)
					continue
				}
				renderThread(conv.Snapshot())
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing the thread")
	cmd.Flags().DurationVar(&interval, "interval", client.DefaultRefreshInterval, "refresh interval with --watch")

	return cmd
}

func renderThread(view client.ThreadView) {
	if view.Notice != "" {
		noticeText.Println(view.Notice)
	}

	for _, group := range view.Groups {
		dayHeader.Printf("--- %s ---\n", group.Date.Format("Mon, 02 Jan 2006"))
		for _, msg := range group.Messages {
			ts := msg.Timestamp.Local().Format("15:04")
			switch {
			case msg.IsSystem():
				systemText.Printf("%s  * %s\n", ts, msg.Content)
			case msg.Delivery == client.DeliveryFailed:
				failedText.Printf("%s  %s: %s (not sent, please retry)\n", ts, msg.SenderID, msg.Content)
			case msg.Delivery == client.DeliveryUnconfirmed:
				fmt.Printf("%s  %s: %s (sending…)\n", ts, msg.SenderID, msg.Content)
			default:
				fmt.Printf("%s  %s: %s\n", ts, msg.SenderID, msg.Content)
			}
		}
	}

	if badge := client.FormatBadge(view.Unread, client.DefaultBadgeCeiling); badge != "" {
		noticeText.Printf("unread: %s\n", badge)
	}
}
