package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
)

// ListProducts fetches the catalog, optionally filtered by category.
func (c *Client) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	path := "/product/getAll"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	if err := c.do(ctx, "list products", http.MethodGet, path, nil, &envelope, false); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
