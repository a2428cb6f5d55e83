package api

import (
	"context"
	"net/http"
	"net/url"

	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"

	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
)

// GetShippingRates fetches the server's state-to-price rate table.
func (c *Client) GetShippingRates(ctx context.Context) ([]domain.ShippingRate, error) {
	var envelope struct {
		Data []domain.ShippingRate `json:"data"`
	}
	if err := c.do(ctx, "get shipping rates", http.MethodGet, "/shipping/getall", nil, &envelope, true); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// CreateOrderInput is the order submission payload. The server prices the
// order from its own cart state; the client sends only address, payment
// method tag, and the optional note.
type CreateOrderInput struct {
	ShippingAddress domain.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	OrderNote       string         `json:"orderNote,omitempty"`
}

// CreateOrder submits the order and returns the created record. An order
// without an identifier is a hard failure: nothing downstream can proceed
// without it.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	var envelope struct {
		Order domain.Order `json:"order"`
	}
	if err := c.do(ctx, "create order", http.MethodPost, "/orders/order", input, &envelope, true); err != nil {
		return nil, err
	}
	if envelope.Order.ID == "" {
		return nil, apperrors.Unavailable("create order: response carried no order id")
	}
	return &envelope.Order, nil
}

// InitializePayment starts a payment session for the order and returns the
// gateway URL the user must be sent to.
func (c *Client) InitializePayment(ctx context.Context, orderID string) (string, error) {
	body := struct {
		OrderID string `json:"orderId"`
	}{OrderID: orderID}

	var envelope struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	if err := c.do(ctx, "initialize payment", http.MethodPost, "/orders/payment/initialize", body, &envelope, true); err != nil {
		return "", err
	}
	if envelope.AuthorizationURL == "" {
		return "", apperrors.Unavailable("initialize payment: response carried no authorization url")
	}
	return envelope.AuthorizationURL, nil
}

// ConfirmPayment verifies a gateway reference against the order.
func (c *Client) ConfirmPayment(ctx context.Context, orderID, reference string) error {
	body := struct {
		OrderID   string `json:"orderId"`
		Reference string `json:"reference"`
	}{OrderID: orderID, Reference: reference}

	return c.do(ctx, "confirm payment", http.MethodPost, "/orders/confirm-payment", body, nil, true)
}

// GetOrder fetches an order for the receipt view.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var envelope struct {
		Order domain.Order `json:"order"`
	}
	path := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, "get order", http.MethodGet, path, nil, &envelope, true); err != nil {
		return nil, err
	}
	return &envelope.Order, nil
}
