// shopctl is a terminal storefront client. The cart, wishlist and checkout
// drafts live in a local session directory; auth and orders talk to the API.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"furniture-shop-backend/internal/cli"
	"furniture-shop-backend/internal/session"
)

var (
	apiURL string
	client *cli.Client
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Shop the furniture store from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiURL == "" {
			apiURL = os.Getenv("SHOP_API_URL")
		}
		if apiURL == "" {
			apiURL = "http://localhost:8080"
		}

		dir := os.Getenv("SHOP_SESSION_DIR")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("could not locate session dir: %w", err)
			}
			dir = filepath.Join(home, ".shopctl")
		}
		storage, err := session.NewFileStorage(dir)
		if err != nil {
			return fmt.Errorf("could not open session dir %s: %w", dir, err)
		}

		client = cli.NewClient(apiURL, session.NewStore(storage))
		return nil
	},
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $SHOP_API_URL or http://localhost:8080)")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd, wishlistCmd, addressCmd, paymentCmd)
	rootCmd.AddCommand(checkoutCmd, ordersCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
