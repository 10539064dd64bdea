package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/swaploop/swaploop/pkg/token"
)

// TokenCmd returns the token command
func TokenCmd() *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development bearer token",
		Long: `Mint a token for local development against a server using the same
JWT secret. Export it as SWAPLOOP_TOKEN.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = env("JWT_SECRET", "dev-secret-change-me")
			}
			signed, err := token.Mint(secret, args[0], ttl)
			if err != nil {
				return fmt.Errorf("minting token: %w", err)
			}
			fmt.Println(signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT secret (defaults to $JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
