// Package resolve locates the concrete vault/collection/folder/file/
// cluster targets a secret definition refers to: by id, by plaintext
// name, or by decrypting an encrypted name and comparing.
package resolve

import (
	"strings"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

// CollectionIDs resolves each requested collection (by id, plaintext
// name, or decrypted name, in that priority order) to its id. Requests
// with no match are silently dropped — a later stage logs what was
// skipped.
func CollectionIDs(requests []string, all []vaultclient.Collection, orgKey crypto.CompositeKey) []string {
	resolved := make([]string, 0, len(requests))

	for _, want := range requests {
		if id, ok := matchByID(all, want); ok {
			resolved = append(resolved, id)
			continue
		}
		if id, ok := matchByPlaintextName(all, want); ok {
			resolved = append(resolved, id)
			continue
		}
		if id, ok := matchByDecryptedName(all, want, orgKey); ok {
			resolved = append(resolved, id)
		}
	}
	return resolved
}

func matchByID(all []vaultclient.Collection, want string) (string, bool) {
	for _, c := range all {
		if c.ID == want {
			return c.ID, true
		}
	}
	return "", false
}

func matchByPlaintextName(all []vaultclient.Collection, want string) (string, bool) {
	for _, c := range all {
		if c.Name == want {
			return c.ID, true
		}
	}
	return "", false
}

func matchByDecryptedName(all []vaultclient.Collection, want string, orgKey crypto.CompositeKey) (string, bool) {
	for _, c := range all {
		if !strings.HasPrefix(c.Name, "2.") {
			continue
		}
		plain, err := crypto.DecryptAESCBCHMAC(c.Name[2:], orgKey)
		if err != nil {
			continue
		}
		if string(plain) == want {
			return c.ID, true
		}
	}
	return "", false
}
