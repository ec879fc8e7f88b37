package orchestrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

func testUserDefinition(blueprintPath string) manifest.UserDefinition {
	return manifest.UserDefinition{
		Name:  "alice",
		Email: "alice@example.com",
		Authentik: &manifest.AuthentikTarget{
			Path: blueprintPath,
			Metadata: manifest.AuthentikMetadata{
				Model:       "authentik_core.user",
				Identifiers: map[string]string{"username": "alice"},
				SecretField: "password",
			},
		},
	}
}

func testOrgKey() crypto.CompositeKey {
	key := make(crypto.CompositeKey, 64)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

// fakeVault is a minimal in-memory vault server covering exactly the
// endpoints RotateSecret exercises: fetch and update one cipher.
func fakeVault(t *testing.T, item map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ciphers/item-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(item)
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			_ = json.NewEncoder(w).Encode(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return httptest.NewServer(mux)
}

// installFakeKubeseal puts a stub "kubeseal" on PATH that echoes its
// stdin back out, so sealed-secret writing can run for real without a
// cluster.
func installFakeKubeseal(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake kubeseal script requires a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\ncat\n"
	path := filepath.Join(dir, "kubeseal")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func baseSecret() manifest.SecretDefinition {
	return manifest.SecretDefinition{
		Name:        "demo-secret",
		Vaultwarden: manifest.VaultwardenTarget{CipherID: "item-1"},
		Kubernetes:  manifest.KubernetesTarget{Name: "demo-secret", Namespace: "default", Path: "apps/demo/secret.sealed.yaml"},
		Keys:        []manifest.KeyDefinition{{Name: "password", Type: manifest.KeyTypeStatic, Value: "super-secret"}},
	}
}

func TestRotateSecret_HappyPathUpdatesVaultAndWritesFiles(t *testing.T) {
	installFakeKubeseal(t)

	item := map[string]any{
		"id":    "item-1",
		"name":  "irrelevant",
		"notes": "Last Rotated: 2020-01-01T00:00:00Z\n",
	}
	server := fakeVault(t, item)
	defer server.Close()

	gitRoot := t.TempDir()
	r := &Rotator{
		Client: vaultclient.New(server.URL, false),
		OrgID:  "org-1",
		OrgKey: testOrgKey(),
		Opts:   Options{GitRoot: gitRoot},
	}

	require.NoError(t, r.RotateSecret(t.Context(), baseSecret()))

	written, err := readFile(filepath.Join(gitRoot, "apps/demo/secret.sealed.yaml"))
	require.NoError(t, err)
	assert.Contains(t, written, "super-secret")
}

func TestRotateSecret_GatedSkipWhenWithinPolicyWindow(t *testing.T) {
	item := map[string]any{
		"id":    "item-1",
		"notes": "Last Rotated: " + time.Now().UTC().Format(time.RFC3339) + "\n",
	}
	server := fakeVault(t, item)
	defer server.Close()

	r := &Rotator{
		Client: vaultclient.New(server.URL, false),
		OrgID:  "org-1",
		OrgKey: testOrgKey(),
		Opts:   Options{GitRoot: t.TempDir()},
	}

	require.NoError(t, r.RotateSecret(t.Context(), baseSecret()))
}

func TestRotateSecret_ForceBypassesPolicyWindow(t *testing.T) {
	installFakeKubeseal(t)

	item := map[string]any{
		"id":    "item-1",
		"notes": "Last Rotated: " + time.Now().UTC().Format(time.RFC3339) + "\n",
	}
	server := fakeVault(t, item)
	defer server.Close()

	gitRoot := t.TempDir()
	r := &Rotator{
		Client: vaultclient.New(server.URL, false),
		OrgID:  "org-1",
		OrgKey: testOrgKey(),
		Opts:   Options{GitRoot: gitRoot, Force: true},
	}

	require.NoError(t, r.RotateSecret(t.Context(), baseSecret()))

	_, err := readFile(filepath.Join(gitRoot, "apps/demo/secret.sealed.yaml"))
	assert.NoError(t, err)
}
