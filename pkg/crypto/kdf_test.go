package crypto

import (
	"bytes"
	"testing"
)

func TestDeriveMasterKeyPBKDF2_Deterministic(t *testing.T) {
	a := DeriveMasterKeyPBKDF2("correct horse battery staple", "user@example.com", 600000)
	b := DeriveMasterKeyPBKDF2("correct horse battery staple", "user@example.com", 600000)
	if !bytes.Equal(a, b) {
		t.Fatal("expected deterministic output for identical inputs")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32-byte master key, got %d", len(a))
	}

	c := DeriveMasterKeyPBKDF2("different password", "user@example.com", 600000)
	if bytes.Equal(a, c) {
		t.Fatal("expected different passwords to derive different keys")
	}
}

func TestDeriveMasterKeyArgon2id_DefaultsApplied(t *testing.T) {
	withDefaults := DeriveMasterKeyArgon2id("pw", "salt", 3, 0, 0)
	explicit := DeriveMasterKeyArgon2id("pw", "salt", 3, DefaultArgon2MemoryMiB, DefaultArgon2Parallelism)
	if !bytes.Equal(withDefaults, explicit) {
		t.Fatal("expected zero memory/parallelism to fall back to the documented defaults")
	}
}

func TestMasterPasswordHash_Deterministic(t *testing.T) {
	masterKey := DeriveMasterKeyPBKDF2("pw", "salt", 100000)
	a := MasterPasswordHash(masterKey, "pw")
	b := MasterPasswordHash(masterKey, "pw")
	if !bytes.Equal(a, b) {
		t.Fatal("expected deterministic master password hash")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32-byte hash, got %d", len(a))
	}
}

func TestStretchHKDF_Produces64Bytes(t *testing.T) {
	masterKey := DeriveMasterKeyPBKDF2("pw", "salt", 100000)
	stretched, err := StretchHKDF(masterKey)
	if err != nil {
		t.Fatalf("stretch: %v", err)
	}
	if len(stretched) != 64 {
		t.Fatalf("expected 64-byte composite key, got %d", len(stretched))
	}
	if bytes.Equal(stretched.EncKey(), stretched.MACKey()) {
		t.Fatal("expected distinct enc and mac halves")
	}
}

func TestStretchHKDF_Deterministic(t *testing.T) {
	masterKey := DeriveMasterKeyPBKDF2("pw", "salt", 100000)
	a, err := StretchHKDF(masterKey)
	if err != nil {
		t.Fatalf("stretch: %v", err)
	}
	b, err := StretchHKDF(masterKey)
	if err != nil {
		t.Fatalf("stretch: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected deterministic stretch output")
	}
}
