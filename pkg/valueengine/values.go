// Package valueengine produces a plaintext value for each key a secret
// definition names, and locates any value that already exists on the
// vault item so random values are reused across rotations rather than
// regenerated every run.
package valueengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/exectools"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/resolve"
)

// RandomLength is used when a random key definition does not specify one.
const RandomLength = 32

// Value is the outcome of producing one key's value.
type Value struct {
	Plaintext string
	IsNew     bool
	Aux       map[string]string // e.g. {"public_key": "..."} for ssh keys
}

// Produce resolves the value for a single key definition according to
// its type. existing is the current decrypted value on the item, if any
// (only consulted for random keys, and only when force is false). secret
// is the owning secret definition, consulted by the k8s key type to
// locate the cluster Secret it reads from.
func Produce(ctx context.Context, key manifest.KeyDefinition, secret manifest.SecretDefinition, existing *string, gitRoot string, force bool) (Value, error) {
	switch key.Type {
	case manifest.KeyTypeStatic:
		return produceStatic(key)
	case manifest.KeyTypeFile:
		return produceFile(key, gitRoot)
	case manifest.KeyTypeK8s:
		return produceK8s(ctx, key, secret)
	case manifest.KeyTypeSSH:
		return produceSSH(ctx, key)
	case manifest.KeyTypeRandom, "":
		return produceRandom(key, existing, force)
	default:
		return Value{}, fmt.Errorf("key %q: unknown key type %q", key.Name, key.Type)
	}
}

func produceStatic(key manifest.KeyDefinition) (Value, error) {
	if key.Value == "" {
		return Value{}, fmt.Errorf("key %q is static but has no value", key.Name)
	}
	log.WithComponent("valueengine").Debug().Str("key", key.Name).Msg("using static value")
	return Value{Plaintext: key.Value}, nil
}

func produceFile(key manifest.KeyDefinition, gitRoot string) (Value, error) {
	if key.Source == nil || key.Source.Path == "" {
		return Value{}, fmt.Errorf("key %q is file but has no source", key.Name)
	}
	val, err := resolve.FileValue(gitRoot, key.Source.Path, key.Source.KeyPath)
	if err != nil {
		return Value{}, fmt.Errorf("key %q: %w", key.Name, err)
	}
	return Value{Plaintext: val}, nil
}

// produceK8s fetches this key's current value from the secret's own
// Kubernetes target: the cluster Secret named secret.Kubernetes.Name in
// secret.Kubernetes.Namespace, keyed by the key's own name.
func produceK8s(ctx context.Context, key manifest.KeyDefinition, secret manifest.SecretDefinition) (Value, error) {
	if secret.Kubernetes.Name == "" {
		return Value{}, fmt.Errorf("key %q is k8s but secret %q has no kubernetes target", key.Name, secret.Name)
	}
	val, err := exectools.GetClusterSecretValue(ctx, secret.Kubernetes.Name, secret.Kubernetes.Namespace, key.Name)
	if err != nil {
		return Value{}, fmt.Errorf("key %q: %w", key.Name, err)
	}
	return Value{Plaintext: val}, nil
}

func produceRandom(key manifest.KeyDefinition, existing *string, force bool) (Value, error) {
	if !force && existing != nil {
		return Value{Plaintext: *existing}, nil
	}
	length := key.Length
	if length == 0 {
		length = RandomLength
	}
	val, err := RandomAlphanumeric(length)
	if err != nil {
		return Value{}, fmt.Errorf("key %q: %w", key.Name, err)
	}
	return Value{Plaintext: val, IsNew: true}, nil
}

func produceSSH(ctx context.Context, key manifest.KeyDefinition) (Value, error) {
	priv, pub, err := exectools.GenerateSSHKeypair(ctx)
	if err != nil {
		return Value{}, fmt.Errorf("key %q: %w", key.Name, err)
	}
	return Value{Plaintext: priv, IsNew: true, Aux: map[string]string{"public_key": pub}}, nil
}

// FindExistingValue looks up the current decrypted value of keyName on a
// vault item: login.username/login.password for those two well-known
// names, otherwise the custom field whose encrypted name decrypts to
// keyName. Custom fields are not consulted for username/password.
func FindExistingValue(item map[string]any, keyName string, orgKey crypto.CompositeKey) *string {
	decrypt := func(s string) *string {
		if s == "" {
			return nil
		}
		trimmed := strings.TrimPrefix(s, "2.")
		plain, err := crypto.DecryptAESCBCHMAC(trimmed, orgKey)
		if err != nil {
			return nil
		}
		v := string(plain)
		return &v
	}

	if keyName == "username" || keyName == "password" {
		if login, ok := item["login"].(map[string]any); ok {
			if v, ok := login[keyName].(string); ok && v != "" {
				return decrypt(v)
			}
		}
		return nil
	}

	fields, ok := item["fields"].([]any)
	if !ok {
		return nil
	}
	for _, f := range fields {
		field, ok := f.(map[string]any)
		if !ok {
			continue
		}
		nameEnc, ok := field["name"].(string)
		if !ok {
			continue
		}
		name := decrypt(nameEnc)
		if name == nil || *name != keyName {
			continue
		}
		valueEnc, ok := field["value"].(string)
		if !ok {
			return nil
		}
		return decrypt(valueEnc)
	}
	return nil
}
