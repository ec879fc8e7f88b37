package exectools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeBinary writes a shell script named name onto a temp PATH
// directory and prepends it to PATH for the duration of the test.
func installFakeBinary(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell binaries require a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRun_CapturesStdoutOnSuccess(t *testing.T) {
	installFakeBinary(t, "true-ish", "echo hello")
	out, err := Run(context.Background(), "", "true-ish")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}

func TestRun_NonZeroExitReturnsSubprocessError(t *testing.T) {
	installFakeBinary(t, "failer", "echo boom 1>&2\nexit 1")
	_, err := Run(context.Background(), "", "failer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestGetClusterSecretValue(t *testing.T) {
	installFakeBinary(t, "kubectl", `cat <<'EOF'
{"data": {"password": "aGVsbG8="}}
EOF`)

	value, err := GetClusterSecretValue(context.Background(), "my-secret", "default", "password")
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestGetClusterSecretValue_MissingKey(t *testing.T) {
	installFakeBinary(t, "kubectl", `echo '{"data": {}}'`)

	_, err := GetClusterSecretValue(context.Background(), "my-secret", "default", "password")
	assert.Error(t, err)
}

func TestGenerateSSHKeypair(t *testing.T) {
	installFakeBinary(t, "ssh-keygen", `
for a in "$@"; do
  if [ "$prev" = "-f" ]; then
    out="$a"
  fi
  prev="$a"
done
echo "fake-private-key" > "$out"
echo "fake-public-key" > "$out.pub"
`)

	priv, pub, err := GenerateSSHKeypair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fake-private-key", priv)
	assert.Equal(t, "fake-public-key", pub)
}
