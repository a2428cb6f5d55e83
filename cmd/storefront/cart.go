package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and modify the shopping cart",
	}

	cmd.AddCommand(cartShowCmd())
	cmd.AddCommand(cartAddCmd())
	cmd.AddCommand(cartRemoveCmd())
	cmd.AddCommand(cartClearCmd())
	cmd.AddCommand(cartAdjustCmd("increase", "Increase a line's quantity by one", domain.ActionIncrease))
	cmd.AddCommand(cartAdjustCmd("decrease", "Decrease a line's quantity by one", domain.ActionDecrease))

	return cmd
}

func cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart with its price summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cart.Refresh(a.ctx()); err != nil {
				return err
			}

			snap := a.cart.Snapshot()
			if snap.IsEmpty() {
				fmt.Println("Your cart is empty.")
				return nil
			}

			for _, item := range snap.CartedItems {
				fmt.Printf("%-30s x%-3d ₦%d\n", item.Name, item.Quantity, item.TotalItemPrice)
			}
			subtotal := snap.Subtotal()
			shipping := domain.FlatShippingQuote(subtotal)
			fmt.Printf("\nSubtotal: ₦%d\n", subtotal)
			if shipping == 0 {
				fmt.Println("Shipping: free")
			} else {
				fmt.Printf("Shipping: ₦%d\n", shipping)
			}
			fmt.Printf("Total:    ₦%d\n", subtotal+shipping)
			return nil
		},
	}
}

func cartAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [product-id]",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, _ := cmd.Flags().GetInt("quantity")

			a, err := newApp()
			if err != nil {
				return err
			}

			addErr := a.cart.Add(a.ctx(), args[0], quantity)
			if errors.Is(addErr, apperrors.ErrUnauthenticated) {
				// Hold the add so a login picks it up.
				if err := a.session.CapturePendingIntent(domain.PendingIntent{ProductID: args[0], Quantity: quantity}); err != nil {
					return err
				}
				fmt.Println("Sign in to add items; this one will be added after you log in.")
				return addErr
			}
			if addErr != nil {
				return addErr
			}
			fmt.Printf("Added. Cart now holds %d item(s).\n", a.cart.Count())
			return nil
		},
	}

	cmd.Flags().IntP("quantity", "q", 1, "Number of units to add")
	return cmd
}

func cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [product-id]",
		Short: "Remove a product line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cart.Refresh(a.ctx()); err != nil {
				return err
			}
			if err := a.cart.Remove(a.ctx(), args[0]); err != nil {
				return err
			}
			fmt.Println("Removed.")
			return nil
		},
	}
}

func cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cart.Clear(a.ctx()); err != nil {
				return err
			}
			fmt.Println("Cart cleared.")
			return nil
		},
	}
}

func cartAdjustCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [product-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.cart.UpdateQuantity(a.ctx(), args[0], action); err != nil {
				return err
			}
			snap := a.cart.Snapshot()
			if i := snap.FindItem(args[0]); i >= 0 {
				fmt.Printf("%s now x%d.\n", snap.CartedItems[i].Name, snap.CartedItems[i].Quantity)
			} else {
				fmt.Println("Line removed.")
			}
			return nil
		},
	}
}
