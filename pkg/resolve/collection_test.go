package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

func testOrgKey(t *testing.T) crypto.CompositeKey {
	t.Helper()
	key := make(crypto.CompositeKey, 64)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestCollectionIDs_ByID(t *testing.T) {
	cols := []vaultclient.Collection{
		{ID: "col-123", Name: "EncryptedStuff"},
		{ID: "col-456", Name: "Startups"},
	}
	ids := CollectionIDs([]string{"col-123"}, cols, testOrgKey(t))
	assert.Equal(t, []string{"col-123"}, ids)
}

func TestCollectionIDs_ByPlaintextName(t *testing.T) {
	cols := []vaultclient.Collection{
		{ID: "col-123", Name: "Security/Prod"},
		{ID: "col-456", Name: "Other"},
	}
	ids := CollectionIDs([]string{"Security/Prod"}, cols, testOrgKey(t))
	assert.Equal(t, []string{"col-123"}, ids)
}

func TestCollectionIDs_ByDecryptedName(t *testing.T) {
	orgKey := testOrgKey(t)
	enc, err := crypto.EncryptAESCBCHMAC([]byte("Team Secrets"), orgKey)
	require.NoError(t, err)

	cols := []vaultclient.Collection{
		{ID: "col-789", Name: enc},
	}
	ids := CollectionIDs([]string{"Team Secrets"}, cols, orgKey)
	assert.Equal(t, []string{"col-789"}, ids)
}

func TestCollectionIDs_UnmatchedRequestsDropped(t *testing.T) {
	cols := []vaultclient.Collection{
		{ID: "col-123", Name: "Stuff"},
	}
	ids := CollectionIDs([]string{"Missing"}, cols, testOrgKey(t))
	assert.Empty(t, ids)
}

func TestCollectionIDs_MixedPriorityAndOrder(t *testing.T) {
	cols := []vaultclient.Collection{
		{ID: "id-1", Name: "Name1"},
		{ID: "id-2", Name: "Name2"},
	}
	ids := CollectionIDs([]string{"id-1", "Name2", "Missing"}, cols, testOrgKey(t))
	assert.Equal(t, []string{"id-1", "id-2"}, ids)
}
