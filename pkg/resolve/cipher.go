package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

// allZeroUUID is how an unset cipherId shows up in some manifest
// templates (copy-pasted placeholder UUIDs).
const allZeroUUID = "00000000-0000-0000-0000-000000000000"

// CipherID locates the vault item id for a secret definition: directly
// via vaultwarden.cipherId when set, otherwise by syncing and matching
// each cipher's decrypted name against vaultwarden.name (falling back to
// the secret's own name).
func CipherID(ctx context.Context, client *vaultclient.Client, secret manifest.SecretDefinition, orgKey crypto.CompositeKey) (string, error) {
	if secret.Vaultwarden.CipherID != "" && secret.Vaultwarden.CipherID != allZeroUUID {
		return secret.Vaultwarden.CipherID, nil
	}

	wantName := secret.Vaultwarden.Name
	if wantName == "" {
		wantName = secret.Name
	}

	sync, err := client.Sync(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve cipher id: sync: %w", err)
	}

	for _, cipher := range sync.Ciphers {
		nameEnc := strings.TrimPrefix(cipher.Name, "2.")
		plain, err := crypto.DecryptAESCBCHMAC(nameEnc, orgKey)
		if err != nil {
			continue
		}
		if string(plain) == wantName {
			return cipher.ID, nil
		}
	}

	return "", fmt.Errorf("could not find cipher with name %q", wantName)
}
