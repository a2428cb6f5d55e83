package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")

			a, err := newApp()
			if err != nil {
				return err
			}
			products, err := a.api.ListProducts(a.ctx(), category)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}

			for _, p := range products {
				fmt.Printf("%-24s %-30s ₦%d\n", p.ID, p.Name, p.Price)
			}
			return nil
		},
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	return cmd
}

func subscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe [email]",
		Short: "Subscribe to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			msg, err := a.api.SubscribeNewsletter(a.ctx(), args[0])
			if errors.Is(err, apperrors.ErrConflict) {
				// Already subscribed is a notice, not a failure.
				fmt.Println("You are already subscribed.")
				return nil
			}
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "Subscribed."
			}
			fmt.Println(msg)
			return nil
		},
	}
}
