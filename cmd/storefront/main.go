package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Command line storefront for the Klassyz hair shop",
		Version: Version,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(cartCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(confirmCmd())
	rootCmd.AddCommand(orderCmd())
	rootCmd.AddCommand(subscribeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
