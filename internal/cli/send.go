package cli

import (
	"github.com/spf13/cobra"

	"github.com/swaploop/swaploop/internal/client"
)

// SendCmd returns the send command
func SendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <swap-id> <text>",
		Short: "Send a message in a swap conversation",
		Long: `Send one message to the other participant of a swap.

Examples:
  swapchat send 7c3f02f1 "Yes, still available!"
  swapchat send 7c3f02f1 "Can we meet Saturday?"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, userID, err := newGateway()
			if err != nil {
				return err
			}

			conv := client.NewConversation(gateway, args[0], userID)
			defer conv.Close()

			composer := client.NewComposer(conv)
			composer.SetText(args[1])

			err = composer.Submit(cmd.Context())
			// The attempted message is in the thread either way.
			renderThread(conv.Snapshot())
			return err
		},
	}

	return cmd
}
