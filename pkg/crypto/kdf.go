package crypto

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultArgon2MemoryMiB and DefaultArgon2Parallelism are used when the
// prelogin response omits memory/parallelism, matching the vault's own
// client-side defaults.
const (
	DefaultArgon2MemoryMiB   = 64
	DefaultArgon2Parallelism = 4
)

// DeriveMasterKeyPBKDF2 derives a 32-byte master key from the account
// password using PBKDF2-HMAC-SHA256.
func DeriveMasterKeyPBKDF2(password, salt string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(salt), iterations, 32, sha256.New)
}

// DeriveMasterKeyArgon2id derives a 32-byte master key from the account
// password using Argon2id. memoryMiB and parallelism default to the
// vault's own client defaults when zero.
func DeriveMasterKeyArgon2id(password, salt string, iterations, memoryMiB, parallelism int) []byte {
	if memoryMiB == 0 {
		memoryMiB = DefaultArgon2MemoryMiB
	}
	if parallelism == 0 {
		parallelism = DefaultArgon2Parallelism
	}
	return argon2.IDKey([]byte(password), []byte(salt), uint32(iterations), uint32(memoryMiB)*1024, uint8(parallelism), 32)
}

// MasterPasswordHash computes base64-ready bytes via a single PBKDF2-
// HMAC-SHA256 iteration of the master key using the account password as
// salt, matching the login-request's masterPasswordHash field.
func MasterPasswordHash(masterKey []byte, password string) []byte {
	return pbkdf2.Key(masterKey, []byte(password), 1, 32, sha256.New)
}

// StretchHKDF widens a 32-byte master key (or master-password-hash) into
// a 64-byte composite encrypt+MAC key via HKDF-Expand, skipping the
// extract step (the input is already high-entropy key material, not a
// password).
func StretchHKDF(masterKey []byte) (CompositeKey, error) {
	enc, err := hkdfExpand(masterKey, []byte("enc"), 32)
	if err != nil {
		return nil, fmt.Errorf("stretch hkdf: enc: %w", err)
	}
	mac, err := hkdfExpand(masterKey, []byte("mac"), 32)
	if err != nil {
		return nil, fmt.Errorf("stretch hkdf: mac: %w", err)
	}
	return append(append(CompositeKey{}, enc...), mac...), nil
}

func hkdfExpand(prk, info []byte, n int) ([]byte, error) {
	r := hkdf.Expand(sha256.New, prk, info)
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}
