package resolve

import (
	"context"
	"fmt"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

// FolderID resolves a personal folder by name, creating it if absent.
// Folders are always personal, so they live under the account's user
// key rather than the organization key.
func FolderID(ctx context.Context, client *vaultclient.Client, name string, userKey crypto.CompositeKey) (string, error) {
	if name == "" {
		return "", nil
	}

	id, found, err := client.ResolveFolderID(ctx, name, userKey, true)
	if err != nil {
		return "", fmt.Errorf("resolve folder id: %w", err)
	}
	if !found {
		log.WithComponent("resolve").Warn().Str("folder", name).Msg("folder could not be resolved or created")
		return "", nil
	}
	return id, nil
}
