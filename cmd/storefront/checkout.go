package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/miku-nicol/klassyz-hair-client/internal/checkout"
	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
)

func checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart and start payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			ctx := a.ctx()

			if err := a.cart.Refresh(ctx); err != nil {
				return err
			}
			snap := a.cart.Snapshot()
			if snap.IsEmpty() {
				return apperrors.Validation("cart is empty", nil)
			}

			addr := domain.Address{}
			addr.FullName, _ = cmd.Flags().GetString("name")
			addr.Address, _ = cmd.Flags().GetString("address")
			addr.City, _ = cmd.Flags().GetString("city")
			addr.State, _ = cmd.Flags().GetString("state")
			addr.Phone, _ = cmd.Flags().GetString("phone")
			addr.Country, _ = cmd.Flags().GetString("country")
			note, _ := cmd.Flags().GetString("note")

			rates, err := a.checkout.ShippingRates(ctx)
			if err != nil {
				return err
			}
			rate, ok := checkout.RateForState(rates, addr.State)
			if !ok {
				return apperrors.Validation(fmt.Sprintf("no delivery to state %q", addr.State), map[string]string{
					"state": "choose a state from the delivery list",
				})
			}

			totals := domain.ComputeTotals(&snap, rate)
			fmt.Printf("Subtotal: ₦%d\nShipping: ₦%d (%s)\nTotal:    ₦%d\n\n",
				totals.Subtotal, totals.Shipping, rate.State, totals.Total)

			return a.checkout.Submit(ctx, checkout.SubmitInput{
				Address:       addr,
				ShippingRate:  rate,
				PaymentMethod: a.cfg.PaymentMethod,
				OrderNote:     note,
			})
		},
	}

	cmd.Flags().String("name", "", "Recipient full name")
	cmd.Flags().String("address", "", "Street address")
	cmd.Flags().String("city", "", "City")
	cmd.Flags().String("state", "", "Delivery state (must be in the rate table)")
	cmd.Flags().String("phone", "", "Contact phone number")
	cmd.Flags().String("country", "Nigeria", "Country")
	cmd.Flags().String("note", "", "Optional order note")

	return cmd
}

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm [return-url]",
		Short: "Verify payment after returning from the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.checkout.Resume(a.ctx(), args[0])
		},
	}
}

func orderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order [order-id]",
		Short: "Show an order receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			order, err := a.checkout.Receipt(a.ctx(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Order %s\n", order.ID)
			if order.OrderStatus != "" {
				fmt.Printf("Status: %s\n", order.OrderStatus)
			}
			for _, item := range order.OrderItems {
				fmt.Printf("  %-30s x%-3d ₦%d\n", item.Name, item.Quantity, item.Price*int64(item.Quantity))
			}
			fmt.Printf("Total: ₦%d\n", order.TotalPrice)
			if order.TrackingNumber != "" {
				fmt.Printf("Tracking: %s\n", order.TrackingNumber)
			}
			if order.InvoiceURL != "" {
				fmt.Printf("Invoice: %s\n", order.InvoiceURL)
			}
			return nil
		},
	}
}
