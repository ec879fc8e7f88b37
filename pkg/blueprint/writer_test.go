package blueprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/rotator-helper/pkg/manifest"
)

func TestWrite_ProducesExpectedStructure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "blueprint.yaml")

	target := manifest.AuthentikTarget{
		Path: path,
		Metadata: manifest.AuthentikMetadata{
			Model:       "authentik_providers_oauth2.oauth2provider",
			Identifiers: map[string]string{"slug": "test-slug"},
			SecretField: "client_secret",
		},
	}

	require.NoError(t, Write(target, "my-super-secret"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc document
	require.NoError(t, yaml.Unmarshal(content, &doc))

	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Entries, 1)
	entry := doc.Entries[0]
	assert.Equal(t, "authentik_providers_oauth2.oauth2provider", entry.Model)
	assert.Equal(t, "test-slug", entry.Identifiers["slug"])
	assert.Equal(t, "my-super-secret", entry.Attrs["client_secret"])
}

func TestWrite_DefaultsSecretFieldWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blueprint.yaml")

	target := manifest.AuthentikTarget{Path: path, Metadata: manifest.AuthentikMetadata{Model: "m"}}
	require.NoError(t, Write(target, "val"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), DefaultSecretField)
}

func TestPickValue_PriorityOrder(t *testing.T) {
	v, ok := PickValue(map[string]string{"password": "p", "secret": "s"})
	assert.True(t, ok)
	assert.Equal(t, "p", v)

	v, ok = PickValue(map[string]string{"client_secret": "c", "password": "p"})
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = PickValue(map[string]string{"other": "x"})
	assert.False(t, ok)
}
