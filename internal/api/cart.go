package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
)

// GetCart fetches the authoritative cart snapshot.
func (c *Client) GetCart(ctx context.Context) (*domain.CartSnapshot, error) {
	var envelope struct {
		Data domain.CartSnapshot `json:"data"`
	}
	if err := c.do(ctx, "get cart", http.MethodGet, "/cart/get", nil, &envelope, true); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// AddToCart adds quantity units of a product to the server cart.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	type cartedItem struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	body := struct {
		CartedItems []cartedItem `json:"cartedItems"`
	}{
		CartedItems: []cartedItem{{ItemID: productID, Quantity: quantity}},
	}
	return c.do(ctx, "add to cart", http.MethodPost, "/cart/add", body, nil, true)
}

// UpdateQuantityResult carries the authoritative snapshot returned by the
// quantity update endpoint.
type UpdateQuantityResult struct {
	Success bool                `json:"success"`
	Data    domain.CartSnapshot `json:"data"`
}

// UpdateQuantity applies an increase or decrease action to a cart line and
// returns the server's full replacement snapshot.
func (c *Client) UpdateQuantity(ctx context.Context, productID, action string) (*UpdateQuantityResult, error) {
	if action != domain.ActionIncrease && action != domain.ActionDecrease {
		return nil, fmt.Errorf("update quantity: unknown action %q", action)
	}
	body := struct {
		ProductID string `json:"productId"`
		Action    string `json:"action"`
	}{ProductID: productID, Action: action}

	var result UpdateQuantityResult
	if err := c.do(ctx, "update quantity", http.MethodPut, "/cart/update", body, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveItem removes a product line from the server cart.
func (c *Client) RemoveItem(ctx context.Context, productID string) error {
	path := "/cart/remove/" + url.PathEscape(productID)
	return c.do(ctx, "remove cart item", http.MethodDelete, path, nil, nil, true)
}

// ClearCart empties the server cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "clear cart", http.MethodDelete, "/cart/clear", nil, nil, true)
}
