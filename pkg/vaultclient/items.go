package vaultclient

import (
	"context"
	"fmt"
	"net/http"
)

// CreateItem creates a new cipher and returns its id.
func (c *Client) CreateItem(ctx context.Context, data map[string]any) (string, error) {
	var resp map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/api/ciphers", data, &resp); err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		return "", fmt.Errorf("create item: no id in response")
	}
	return id, nil
}

// UpdateItem overwrites an existing cipher's body.
func (c *Client) UpdateItem(ctx context.Context, itemID string, data map[string]any) error {
	if err := c.doJSON(ctx, http.MethodPut, "/api/ciphers/"+itemID, data, nil); err != nil {
		return fmt.Errorf("update item %s: %w", itemID, err)
	}
	return nil
}

// GetItem fetches a cipher's raw JSON body.
func (c *Client) GetItem(ctx context.Context, itemID string) (map[string]any, error) {
	var item map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/api/ciphers/"+itemID, nil, &item); err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return item, nil
}

// DeleteItem permanently deletes a cipher.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/ciphers/"+itemID, nil, nil); err != nil {
		return fmt.Errorf("delete item %s: %w", itemID, err)
	}
	return nil
}

// DeleteFolder permanently deletes a folder.
func (c *Client) DeleteFolder(ctx context.Context, folderID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/folders/"+folderID, nil, nil); err != nil {
		return fmt.Errorf("delete folder %s: %w", folderID, err)
	}
	return nil
}
