package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // matches the vault's OAEP-SHA1 wrap format under test
	"crypto/x509"
	"encoding/base64"
	"testing"
)

func generateTestRSAKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	return key, der
}

func TestDecryptRSA_OAEP(t *testing.T) {
	key, der := generateTestRSAKey(t)
	plaintext := []byte("organization-key-material-32byte")

	ct, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, &key.PublicKey, plaintext, nil)
	if err != nil {
		t.Fatalf("encrypt oaep: %v", err)
	}
	wire := base64.StdEncoding.EncodeToString(ct)

	got, err := DecryptRSA(wire, der)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptRSA_PKCS1v15Fallback(t *testing.T) {
	key, der := generateTestRSAKey(t)
	plaintext := []byte("legacy-org-key")

	ct, err := rsa.EncryptPKCS1v15(rand.Reader, &key.PublicKey, plaintext)
	if err != nil {
		t.Fatalf("encrypt pkcs1v15: %v", err)
	}
	wire := base64.StdEncoding.EncodeToString(ct)

	got, err := DecryptRSA(wire, der)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptRSA_RejectsMACShapedInput(t *testing.T) {
	_, der := generateTestRSAKey(t)
	if _, err := DecryptRSA("aXY=|Y3Q=|bWFj", der); err == nil {
		t.Fatal("expected rejection of a mac-shaped cipher string")
	}
}
