package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // required by the vault's RSA-OAEP-SHA1 wrap format
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// DecryptRSA unwraps an organization key ("4."-tagged cipher string)
// under the member's RSA private key (PKCS#8 DER). The vault encrypts
// new keys with OAEP-SHA1 but some legacy organizations still carry
// PKCS1v15-wrapped keys, so OAEP is tried first and PKCS1v15 is the
// fallback.
func DecryptRSA(cipherText string, privateKeyDER []byte) ([]byte, error) {
	cs, err := ParseCipherString(cipherText)
	if err != nil {
		return nil, fmt.Errorf("decrypt rsa: %w", err)
	}
	if cs.HasMAC() {
		return nil, fmt.Errorf("decrypt rsa: expected an untagged rsa blob, got a mac-shaped cipher string")
	}

	blob, err := base64.StdEncoding.DecodeString(cs.rawPayload)
	if err != nil {
		return nil, fmt.Errorf("decrypt rsa: decode payload: %w", err)
	}

	key, err := x509.ParsePKCS8PrivateKey(privateKeyDER)
	if err != nil {
		return nil, fmt.Errorf("decrypt rsa: parse pkcs8 private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("decrypt rsa: pkcs8 key is not an rsa private key")
	}

	if plain, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, rsaKey, blob, nil); err == nil {
		return plain, nil
	}
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, rsaKey, blob)
	if err != nil {
		return nil, fmt.Errorf("decrypt rsa: both oaep-sha1 and pkcs1v15 failed: %w", err)
	}
	return plain, nil
}
