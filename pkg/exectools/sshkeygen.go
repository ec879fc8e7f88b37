package exectools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// GenerateSSHKeypair shells out to `ssh-keygen -t ed25519` in a temp
// directory and returns the trimmed private/public key material.
func GenerateSSHKeypair(ctx context.Context) (privateKey, publicKey string, err error) {
	dir, err := os.MkdirTemp("", "rotator-helper-sshkey-*")
	if err != nil {
		return "", "", rotatorerr.New(rotatorerr.IO, "exectools.GenerateSSHKeypair: mkdtemp", err)
	}
	defer os.RemoveAll(dir)

	keyPath := filepath.Join(dir, "id_ed25519")
	if _, err := Run(ctx, "", "ssh-keygen", "-t", "ed25519", "-f", keyPath, "-N", "", "-q"); err != nil {
		return "", "", fmt.Errorf("generate ssh keypair: %w", err)
	}

	priv, err := os.ReadFile(keyPath)
	if err != nil {
		return "", "", rotatorerr.New(rotatorerr.IO, "exectools.GenerateSSHKeypair: read private key", err)
	}
	pub, err := os.ReadFile(keyPath + ".pub")
	if err != nil {
		return "", "", rotatorerr.New(rotatorerr.IO, "exectools.GenerateSSHKeypair: read public key", err)
	}

	return strings.TrimSpace(string(priv)), strings.TrimSpace(string(pub)), nil
}
