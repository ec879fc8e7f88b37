package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// CompositeKey is a 64-byte key: bytes [0:32) are the AES-256 encryption
// key, bytes [32:64) are the HMAC-SHA256 MAC key. Some call sites only
// ever need the first 32 bytes (raw-CBC fallback, PBKDF2/Argon2id output)
// and pass a 32-byte CompositeKey with no MAC half.
type CompositeKey []byte

// EncKey returns the AES-256 key half.
func (k CompositeKey) EncKey() []byte {
	if len(k) < 32 {
		return nil
	}
	return k[:32]
}

// MACKey returns the HMAC-SHA256 key half, or nil if the key is too short
// to carry one (the raw-CBC legacy case).
func (k CompositeKey) MACKey() []byte {
	if len(k) < 64 {
		return nil
	}
	return k[32:64]
}

// EncryptAESCBCHMAC encrypts plaintext under a 64-byte composite key and
// returns a "2.{iv}|{ct}|{mac}" cipher string.
func EncryptAESCBCHMAC(plaintext []byte, key CompositeKey) (string, error) {
	if len(key) != 64 {
		return "", fmt.Errorf("encrypt aes-cbc-hmac: key must be 64 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key.EncKey())
	if err != nil {
		return "", fmt.Errorf("encrypt aes-cbc-hmac: new cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("encrypt aes-cbc-hmac: generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	mac := hmac.New(sha256.New, key.MACKey())
	mac.Write(iv)
	mac.Write(ct)
	tag := mac.Sum(nil)

	return fmt.Sprintf("%d.%s|%s|%s",
		CipherTypeAESCBCHMAC,
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(ct),
		base64.StdEncoding.EncodeToString(tag),
	), nil
}

// DecryptAESCBCHMAC decrypts an encrypt-then-MAC cipher string, verifying
// the HMAC tag in constant time before decrypting. Accepts both
// "N.iv|ct|mac" and bare "iv|ct|mac" (the wire format item field values
// use, with no leading type tag).
func DecryptAESCBCHMAC(cipherText string, key CompositeKey) ([]byte, error) {
	cs, err := ParseCipherString(cipherText)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: %w", err)
	}
	if !cs.HasMAC() {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: cipher string has no MAC section")
	}
	if len(key.MACKey()) == 0 {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: key must be at least 64 bytes to carry a MAC key")
	}

	iv, err := base64.StdEncoding.DecodeString(cs.IVB64)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: decode iv: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(cs.CipherB64)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: decode ciphertext: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(cs.MACB64)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: decode mac: %w", err)
	}

	mac := hmac.New(sha256.New, key.MACKey())
	mac.Write(iv)
	mac.Write(ct)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, rotatorerr.New(rotatorerr.Crypto, "crypto.DecryptAESCBCHMAC",
			fmt.Errorf("decrypt aes-cbc-hmac: mac verification failed"))
	}

	block, err := aes.NewCipher(key.EncKey())
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: new cipher: %w", err)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("decrypt aes-cbc-hmac: ciphertext is not a multiple of the block size")
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return pkcs7Unpad(plain)
}

// decryptAESCBCRaw decodes a legacy, unauthenticated "iv||ct" blob: the
// first 16 bytes are the IV, the rest is ciphertext, with no MAC check.
// Used only by the auth flow's key-unwrap ladder (see pkg/authflow); no
// other caller in this module may use it, since it accepts tampered
// ciphertext silently.
func decryptAESCBCRaw(cipherText string, key CompositeKey) ([]byte, error) {
	cs, err := ParseCipherString(cipherText)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-raw: %w", err)
	}

	var blob []byte
	if cs.HasMAC() {
		// Caller passed a hmac-shaped string to the raw path; reject
		// rather than silently dropping the mac section.
		return nil, fmt.Errorf("decrypt aes-cbc-raw: cipher string carries a mac section, use DecryptAESCBCHMAC")
	}
	blob, err = base64.StdEncoding.DecodeString(cs.rawPayload)
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-raw: decode: %w", err)
	}
	if len(blob) < aes.BlockSize {
		return nil, fmt.Errorf("decrypt aes-cbc-raw: blob shorter than one block")
	}

	block, err := aes.NewCipher(key.EncKey())
	if err != nil {
		return nil, fmt.Errorf("decrypt aes-cbc-raw: new cipher: %w", err)
	}

	iv, ct := blob[:aes.BlockSize], blob[aes.BlockSize:]
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("decrypt aes-cbc-raw: ciphertext is not a multiple of the block size")
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return pkcs7Unpad(plain)
}

// DecryptAESCBCRawKeyUnwrap is the exported entry point for
// pkg/authflow's legacy key-unwrap fallback. It exists as a distinct,
// narrowly-named function rather than exporting decryptAESCBCRaw
// directly so that grepping the codebase for callers of the
// no-MAC path only ever turns up the key-unwrap ladder.
func DecryptAESCBCRawKeyUnwrap(cipherText string, key CompositeKey) ([]byte, error) {
	return decryptAESCBCRaw(cipherText, key)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pkcs7 unpad: empty input")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("pkcs7 unpad: invalid padding length %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("pkcs7 unpad: inconsistent padding bytes")
		}
	}
	return data[:len(data)-padLen], nil
}
