package vaultclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/log"
)

// ListFolders lists the account's personal folders.
func (c *Client) ListFolders(ctx context.Context) ([]FolderData, error) {
	var env listEnvelope[FolderData]
	if err := c.doJSON(ctx, http.MethodGet, "/api/folders", nil, &env); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return env.Data, nil
}

// CreateFolder creates a personal folder from an already-encrypted name
// and returns its id.
func (c *Client) CreateFolder(ctx context.Context, nameEnc string) (string, error) {
	var resp map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/api/folders", map[string]string{"name": nameEnc}, &resp); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		return "", fmt.Errorf("create folder: no id in response")
	}
	return id, nil
}

// ResolveFolderID finds a personal folder by its plaintext name, trying
// every folder's decrypted name under userKey. When createIfMissing is
// set and no match is found, a new folder is created and its id
// returned.
func (c *Client) ResolveFolderID(ctx context.Context, name string, userKey crypto.CompositeKey, createIfMissing bool) (string, bool, error) {
	folders, err := c.ListFolders(ctx)
	if err != nil {
		return "", false, err
	}

	for _, f := range folders {
		nameEnc := strings.TrimPrefix(f.Name, "2.")
		plain, err := crypto.DecryptAESCBCHMAC(nameEnc, userKey)
		if err != nil {
			continue
		}
		if string(plain) == name {
			return f.ID, true, nil
		}
	}

	if !createIfMissing {
		return "", false, nil
	}

	log.WithComponent("vaultclient").Info().Str("folder", name).Msg("folder not found, creating")
	nameEnc, err := crypto.EncryptAESCBCHMAC([]byte(name), userKey)
	if err != nil {
		return "", false, fmt.Errorf("resolve folder id: encrypt folder name: %w", err)
	}
	id, err := c.CreateFolder(ctx, nameEnc)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
