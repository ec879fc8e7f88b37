package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/valueengine"
)

// PreparedItem is the outcome of resolving and applying every key a secret
// definition names to a vault item in memory.
type PreparedItem struct {
	PlaintextValues map[string]string
}

// PrepareUpdatedItem resolves a value for each key in secret.Keys, writes
// the encrypted value onto item (login.username/login.password or a
// field), and restamps item's notes with the current rotation time. It
// mutates item in place and returns the plaintext values keyed by name,
// for use by the Kubernetes and Authentik writers.
func PrepareUpdatedItem(ctx context.Context, item map[string]any, secret manifest.SecretDefinition, gitRoot string, orgKey crypto.CompositeKey, force bool) (PreparedItem, error) {
	values := make(map[string]string)

	for _, keyDef := range secret.Keys {
		var existing *string
		if keyDef.Type == manifest.KeyTypeRandom && !force {
			existing = valueengine.FindExistingValue(item, keyDef.Name, orgKey)
		}

		v, err := valueengine.Produce(ctx, keyDef, secret, existing, gitRoot, force)
		if err != nil {
			return PreparedItem{}, fmt.Errorf("prepare key %q: %w", keyDef.Name, err)
		}
		values[keyDef.Name] = v.Plaintext

		encrypted, err := crypto.EncryptAESCBCHMAC([]byte(v.Plaintext), orgKey)
		if err != nil {
			return PreparedItem{}, fmt.Errorf("encrypt key %q: %w", keyDef.Name, err)
		}
		applyKeyToItem(item, keyDef.Name, encrypted, orgKey)

		for auxKey, auxVal := range v.Aux {
			values[auxKey] = auxVal
			encAux, err := crypto.EncryptAESCBCHMAC([]byte(auxVal), orgKey)
			if err != nil {
				return PreparedItem{}, fmt.Errorf("encrypt auxiliary %q: %w", auxKey, err)
			}
			applyKeyToItem(item, auxKey, encAux, orgKey)
		}
	}

	notes, _ := item["notes"].(string)
	item["notes"] = StampLastRotated(notes, time.Now())

	return PreparedItem{PlaintextValues: values}, nil
}

func applyKeyToItem(item map[string]any, key, encryptedValue string, orgKey crypto.CompositeKey) {
	if key == "username" || key == "password" {
		login, ok := item["login"].(map[string]any)
		if !ok {
			login = map[string]any{}
			item["login"] = login
		}
		login[key] = encryptedValue
		return
	}

	fields, _ := item["fields"].([]any)
	for _, f := range fields {
		field, ok := f.(map[string]any)
		if !ok {
			continue
		}
		nameEnc, ok := field["name"].(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimPrefix(nameEnc, "2.")
		plain, err := crypto.DecryptAESCBCHMAC(trimmed, orgKey)
		if err != nil || string(plain) != key {
			continue
		}
		field["value"] = encryptedValue
		field["type"] = 1
		return
	}

	encryptedName, err := crypto.EncryptAESCBCHMAC([]byte(key), orgKey)
	if err != nil {
		return
	}
	newField := map[string]any{"name": encryptedName, "value": encryptedValue, "type": 1}
	item["fields"] = append(fields, newField)
}
