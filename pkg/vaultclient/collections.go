package vaultclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cuemby/rotator-helper/pkg/log"
)

// ListCollections lists every collection in an organization.
func (c *Client) ListCollections(ctx context.Context, orgID string) ([]Collection, error) {
	var env listEnvelope[Collection]
	if err := c.doJSON(ctx, http.MethodGet, "/api/organizations/"+orgID+"/collections", nil, &env); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return env.Data, nil
}

// CreateCollection creates a new organization collection and returns its id.
func (c *Client) CreateCollection(ctx context.Context, orgID, name string) (string, error) {
	payload := map[string]any{
		"name":           name,
		"organizationId": orgID,
		"externalId":     nil,
	}
	var resp map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/api/organizations/"+orgID+"/collections", payload, &resp); err != nil {
		return "", fmt.Errorf("create collection %q: %w", name, err)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		return "", fmt.Errorf("create collection %q: no id in response", name)
	}
	return id, nil
}

// UpdateCollections assigns an item to the given set of collection ids.
func (c *Client) UpdateCollections(ctx context.Context, itemID string, collectionIDs []string) error {
	payload := map[string]any{"collectionIds": collectionIDs}
	if err := c.doJSON(ctx, http.MethodPut, "/api/ciphers/"+itemID+"/collections", payload, nil); err != nil {
		return fmt.Errorf("update collections for item %s: %w", itemID, err)
	}
	return nil
}

// ListMembers lists organization members. A self-hosted vault that does
// not expose the members endpoint returns a bare 404; that is treated as
// an empty member list with a logged warning, never a fatal error.
func (c *Client) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	var env listEnvelope[Member]
	status, err := c.doJSONStatus(ctx, http.MethodGet, "/api/organizations/"+orgID+"/members", &env)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if status == http.StatusNotFound {
		log.WithComponent("vaultclient").Warn().Str("org_id", orgID).
			Msg("members endpoint returned 404, continuing without member resolution")
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("list members: status %d", status)
	}
	return env.Data, nil
}
