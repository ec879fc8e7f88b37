package vaultclient

import (
	"context"
	"fmt"
	"net/http"
)

// Sync fetches the account's profile, folders, and ciphers.
func (c *Client) Sync(ctx context.Context) (SyncData, error) {
	var data SyncData
	if err := c.doJSON(ctx, http.MethodGet, "/api/sync", nil, &data); err != nil {
		return SyncData{}, fmt.Errorf("sync: %w", err)
	}
	return data, nil
}
