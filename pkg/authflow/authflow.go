// Package authflow implements the login and key-unwrap sequence needed
// to obtain a usable organization key: prelogin, password-grant login,
// sync, then a candidate-key ladder that unwraps the account's profile
// key and finally the organization key.
package authflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

// KdfType mirrors the vault's numeric KDF identifier: 0 = PBKDF2-SHA256,
// 1 = Argon2id.
const (
	KdfPBKDF2   = 0
	KdfArgon2id = 1
)

// Config carries everything the flow needs besides the vault's own
// server responses.
type Config struct {
	BaseURL         string
	Email           string
	Password        string
	SessionKeyB64   string // optional pre-decrypted user key override
	OrgIDFilter     string
	OrgNameFilter   string
	DebugAPI        bool
}

// Result is the outcome of a successful Authenticate call.
type Result struct {
	Client  *vaultclient.Client
	OrgID   string
	OrgKey  crypto.CompositeKey
	UserKey crypto.CompositeKey
}

// Authenticate runs the full login + key-unwrap sequence described in
// the package doc comment.
func Authenticate(ctx context.Context, cfg Config) (*Result, error) {
	client := vaultclient.New(cfg.BaseURL, cfg.DebugAPI)

	kdf, err := client.Prelogin(ctx, cfg.Email)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: prelogin", err)
	}

	masterKey := deriveMasterKey(cfg.Password, cfg.Email, kdf)
	masterPasswordHash := crypto.MasterPasswordHash(masterKey, cfg.Password)
	masterPasswordHashB64 := base64.StdEncoding.EncodeToString(masterPasswordHash)

	if err := client.LoginPassword(ctx, cfg.Email, masterPasswordHashB64); err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: login", err)
	}

	sync, err := client.Sync(ctx)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: sync", err)
	}

	userKey, err := unwrapUserKey(cfg, sync.Profile.Key, masterKey, masterPasswordHash)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: unwrap user key", err)
	}

	org, err := findOrganization(sync.Profile.Organizations, cfg.OrgIDFilter, cfg.OrgNameFilter)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: find organization", err)
	}
	if org.Key == nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate",
			fmt.Errorf("organization %s has no key", org.ID))
	}

	orgKey, err := unwrapOrgKey(*org.Key, sync.Profile.PrivateKey, userKey)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Auth, "authflow.Authenticate: unwrap org key", err)
	}

	return &Result{Client: client, OrgID: org.ID, OrgKey: orgKey, UserKey: userKey}, nil
}

func deriveMasterKey(password, email string, kdf vaultclient.KdfInfo) []byte {
	switch kdf.Kdf {
	case KdfArgon2id:
		memory, parallelism := 0, 0
		if kdf.KdfMemory != nil {
			memory = *kdf.KdfMemory
		}
		if kdf.KdfParallelism != nil {
			parallelism = *kdf.KdfParallelism
		}
		return crypto.DeriveMasterKeyArgon2id(password, strings.ToLower(email), kdf.KdfIterations, memory, parallelism)
	default:
		return crypto.DeriveMasterKeyPBKDF2(password, strings.ToLower(email), kdf.KdfIterations)
	}
}

// candidateKey is one entry in the key-unwrap ladder.
type candidateKey struct {
	name string
	key  crypto.CompositeKey
}

// unwrapUserKey tries each candidate key, most-specific first, against
// the encrypted profile key, trying an authenticated decrypt before the
// legacy no-MAC fallback for each. The first successful decrypt wins.
func unwrapUserKey(cfg Config, profileKeyEnc string, masterKey, masterPasswordHash []byte) (crypto.CompositeKey, error) {
	var candidates []candidateKey

	if cfg.SessionKeyB64 != "" {
		if sessionKey, err := base64.StdEncoding.DecodeString(cfg.SessionKeyB64); err == nil {
			candidates = append(candidates, candidateKey{"session override", crypto.CompositeKey(sessionKey)})
		}
	}

	if stretched, err := crypto.StretchHKDF(masterKey); err == nil {
		candidates = append(candidates, candidateKey{"stretch(masterKey)", stretched})
	}
	if stretched, err := crypto.StretchHKDF(masterPasswordHash); err == nil {
		candidates = append(candidates, candidateKey{"stretch(masterPasswordHash)", stretched})
	}
	candidates = append(candidates, candidateKey{"raw masterPasswordHash", crypto.CompositeKey(masterPasswordHash)})
	candidates = append(candidates, candidateKey{"raw masterKey", crypto.CompositeKey(masterKey)})

	plain, _, err := tryCandidates(candidates, profileKeyEnc)
	if err != nil {
		return nil, fmt.Errorf("unwrap user key: %w", err)
	}
	return crypto.CompositeKey(plain), nil
}

// tryCandidates attempts an authenticated decrypt then a legacy raw
// decrypt for each candidate key in order, returning the first success.
func tryCandidates(candidates []candidateKey, cipherText string) ([]byte, string, error) {
	stripped := stripCipherPrefix(cipherText)

	for _, c := range candidates {
		if plain, err := crypto.DecryptAESCBCHMAC(stripped, c.key); err == nil {
			return plain, c.name, nil
		}
		if plain, err := crypto.DecryptAESCBCRawKeyUnwrap(stripped, c.key); err == nil {
			return plain, c.name, nil
		}
	}
	return nil, "", fmt.Errorf("no candidate key could decrypt the target")
}

func findOrganization(orgs []vaultclient.Organization, idFilter, nameFilter string) (*vaultclient.Organization, error) {
	for i := range orgs {
		o := &orgs[i]
		if idFilter != "" && o.ID != idFilter {
			continue
		}
		if nameFilter != "" && o.Name != nameFilter {
			continue
		}
		return o, nil
	}
	return nil, fmt.Errorf("no organization matched (id filter=%q, name filter=%q)", idFilter, nameFilter)
}

// unwrapOrgKey decrypts an organization key. A "4."-tagged key is
// RSA-wrapped and requires unwrapping the account's private key first;
// anything else is unwrapped symmetrically under the user key.
func unwrapOrgKey(orgKeyEnc string, privateKeyEnc *string, userKey crypto.CompositeKey) (crypto.CompositeKey, error) {
	if strings.HasPrefix(orgKeyEnc, "4.") {
		if privateKeyEnc == nil {
			return nil, fmt.Errorf("organization key is rsa-wrapped but profile has no private key")
		}
		privateKeyDER, _, err := tryCandidates([]candidateKey{{"userKey", userKey}}, *privateKeyEnc)
		if err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
		plain, err := crypto.DecryptRSA(orgKeyEnc, privateKeyDER)
		if err != nil {
			return nil, fmt.Errorf("rsa-unwrap organization key: %w", err)
		}
		return crypto.CompositeKey(plain), nil
	}

	plain, _, err := tryCandidates([]candidateKey{{"userKey", userKey}}, orgKeyEnc)
	if err != nil {
		return nil, fmt.Errorf("symmetric-unwrap organization key: %w", err)
	}
	return crypto.CompositeKey(plain), nil
}

// stripCipherPrefix removes a leading "N." type tag if present.
func stripCipherPrefix(s string) string {
	if len(s) > 1 && s[1] == '.' && s[0] >= '0' && s[0] <= '9' {
		return s[2:]
	}
	return s
}

