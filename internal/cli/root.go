package cli

import (
	"fmt"
	"os"

	"github.com/swaploop/swaploop/internal/client"
)

// env returns the value of key or fallback when unset. CLI configuration is
// env-driven: SWAPLOOP_API, SWAPLOOP_TOKEN, SWAPLOOP_USER.
func env(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func newGateway() (*client.HTTPGateway, string, error) {
	api := env("SWAPLOOP_API", "http://localhost:8080")
	token := env("SWAPLOOP_TOKEN", "")
	userID := env("SWAPLOOP_USER", "")
	if token == "" || userID == "" {
		return nil, "", fmt.Errorf("SWAPLOOP_TOKEN and SWAPLOOP_USER must be set (try `swapchat token <user-id>`)")
	}
	return client.NewHTTPGateway(api, token), userID, nil
}
