package authflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

func TestTryCandidates_FirstMatchingKeyWins(t *testing.T) {
	rightKey := make(crypto.CompositeKey, 64)
	for i := range rightKey {
		rightKey[i] = byte(i)
	}
	wrongKey := make(crypto.CompositeKey, 64)
	for i := range wrongKey {
		wrongKey[i] = byte(255 - i)
	}

	cipherText, err := crypto.EncryptAESCBCHMAC([]byte("profile-key-bytes"), rightKey)
	require.NoError(t, err)

	candidates := []candidateKey{
		{"wrong", wrongKey},
		{"right", rightKey},
	}

	plain, name, err := tryCandidates(candidates, cipherText)
	require.NoError(t, err)
	assert.Equal(t, "right", name)
	assert.Equal(t, "profile-key-bytes", string(plain))
}

func TestTryCandidates_NoMatchErrors(t *testing.T) {
	wrongKey := make(crypto.CompositeKey, 64)
	rightKey := make(crypto.CompositeKey, 64)
	for i := range rightKey {
		rightKey[i] = byte(i)
	}
	cipherText, err := crypto.EncryptAESCBCHMAC([]byte("x"), rightKey)
	require.NoError(t, err)

	_, _, err = tryCandidates([]candidateKey{{"wrong", wrongKey}}, cipherText)
	assert.Error(t, err)
}

func TestStripCipherPrefix(t *testing.T) {
	assert.Equal(t, "iv|ct|mac", stripCipherPrefix("2.iv|ct|mac"))
	assert.Equal(t, "iv|ct|mac", stripCipherPrefix("iv|ct|mac"))
	assert.Equal(t, "4.blob", stripCipherPrefix("4.blob"))
}

func TestFindOrganization(t *testing.T) {
	key1, key2 := "key1", "key2"
	orgs := []vaultclient.Organization{
		{ID: "org-1", Name: "Acme", Key: &key1},
		{ID: "org-2", Name: "Globex", Key: &key2},
	}

	found, err := findOrganization(orgs, "", "Globex")
	require.NoError(t, err)
	assert.Equal(t, "org-2", found.ID)

	found, err = findOrganization(orgs, "org-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)

	_, err = findOrganization(orgs, "org-404", "")
	assert.Error(t, err)
}
