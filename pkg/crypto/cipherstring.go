// Package crypto implements the vault's cipher string wire format and the
// symmetric/asymmetric primitives needed to decrypt and re-encrypt vault
// items: AES-256-CBC with an HMAC-SHA256 authentication tag, the PBKDF2
// and Argon2id master key derivations, the HKDF key-stretch used to widen
// a 32-byte master key into a 64-byte encrypt+MAC composite key, and RSA
// unwrap for organization keys.
package crypto

import (
	"fmt"
	"strconv"
	"strings"
)

// CipherType identifies the algorithm tag prefixing a cipher string.
type CipherType int

const (
	// CipherTypeAESCBCHMAC is encrypt-then-MAC AES-256-CBC with a
	// 32-byte HMAC-SHA256 tag, the format every current vault record
	// uses.
	CipherTypeAESCBCHMAC CipherType = 2
	// CipherTypeRSA2048OAEPSHA1 wraps organization keys under a
	// member's RSA public key.
	CipherTypeRSA2048OAEPSHA1 CipherType = 4
)

// CipherString is a parsed "<type>.<iv>|<ct>|<mac>" vault record.
type CipherString struct {
	Type       CipherType
	IVB64      string
	CipherB64  string
	MACB64     string
	hasTag     bool
	rawNoMAC   bool // true for legacy no-pipe, no-MAC blobs
	rawPayload string
}

// ParseCipherString splits a wire-format cipher string into its
// components. A string with no "N." tag prefix is treated as an untagged
// AES-256-CBC-HMAC record (the common case for item field values).
func ParseCipherString(s string) (CipherString, error) {
	cs := CipherString{Type: CipherTypeAESCBCHMAC}

	body := s
	if len(s) > 1 && s[1] == '.' && s[0] >= '0' && s[0] <= '9' {
		n, err := strconv.Atoi(string(s[0]))
		if err != nil {
			return CipherString{}, fmt.Errorf("parse cipher string type: %w", err)
		}
		cs.Type = CipherType(n)
		cs.hasTag = true
		body = s[2:]
	}

	if !strings.Contains(body, "|") {
		cs.rawNoMAC = true
		cs.rawPayload = body
		return cs, nil
	}

	parts := strings.Split(body, "|")
	if len(parts) != 3 {
		return CipherString{}, fmt.Errorf("cipher string must have exactly 3 pipe-separated parts, got %d", len(parts))
	}
	cs.IVB64, cs.CipherB64, cs.MACB64 = parts[0], parts[1], parts[2]
	return cs, nil
}

// String renders the cipher string back to wire format.
func (cs CipherString) String() string {
	if cs.rawNoMAC {
		return cs.rawPayload
	}
	body := fmt.Sprintf("%s|%s|%s", cs.IVB64, cs.CipherB64, cs.MACB64)
	if cs.hasTag {
		return fmt.Sprintf("%d.%s", cs.Type, body)
	}
	return body
}

// HasMAC reports whether the string carries an authentication tag.
func (cs CipherString) HasMAC() bool { return !cs.rawNoMAC }
