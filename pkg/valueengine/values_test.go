package valueengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/manifest"
)

func TestProduce_Static(t *testing.T) {
	v, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeStatic, Value: "static-val"}, manifest.SecretDefinition{}, nil, "", false)
	require.NoError(t, err)
	assert.Equal(t, "static-val", v.Plaintext)
	assert.False(t, v.IsNew)
}

func TestProduce_Static_MissingValueErrors(t *testing.T) {
	_, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeStatic}, manifest.SecretDefinition{}, nil, "", false)
	assert.Error(t, err)
}

func TestProduce_RandomGeneratesNewWhenNoExisting(t *testing.T) {
	v, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeRandom, Length: 10}, manifest.SecretDefinition{}, nil, "", false)
	require.NoError(t, err)
	assert.True(t, v.IsNew)
	assert.Len(t, v.Plaintext, 10)
}

func TestProduce_RandomReusesExistingUnlessForced(t *testing.T) {
	existing := "existing-value"
	v, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeRandom, Length: 10}, manifest.SecretDefinition{}, &existing, "", false)
	require.NoError(t, err)
	assert.Equal(t, "existing-value", v.Plaintext)
	assert.False(t, v.IsNew)
}

func TestProduce_RandomForceRegeneratesEvenWithExisting(t *testing.T) {
	existing := "existing-value"
	v, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeRandom, Length: 10}, manifest.SecretDefinition{}, &existing, "", true)
	require.NoError(t, err)
	assert.True(t, v.IsNew)
	assert.NotEqual(t, "existing-value", v.Plaintext)
}

func TestProduce_DefaultsTo32CharsWhenLengthUnset(t *testing.T) {
	v, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeRandom}, manifest.SecretDefinition{}, nil, "", false)
	require.NoError(t, err)
	assert.Len(t, v.Plaintext, RandomLength)
}

func TestProduce_K8s_MissingKubernetesTargetErrors(t *testing.T) {
	_, err := Produce(t.Context(), manifest.KeyDefinition{Name: "k", Type: manifest.KeyTypeK8s}, manifest.SecretDefinition{Name: "demo-secret"}, nil, "", false)
	assert.Error(t, err)
}

func TestFindExistingValue_LoginFields(t *testing.T) {
	key := make(crypto.CompositeKey, 64)
	for i := range key {
		key[i] = byte(i)
	}
	encUser, err := crypto.EncryptAESCBCHMAC([]byte("alice"), key)
	require.NoError(t, err)

	item := map[string]any{
		"login": map[string]any{"username": encUser, "password": ""},
	}

	got := FindExistingValue(item, "username", key)
	require.NotNil(t, got)
	assert.Equal(t, "alice", *got)

	assert.Nil(t, FindExistingValue(item, "password", key))
}

func TestFindExistingValue_CustomFields(t *testing.T) {
	key := make(crypto.CompositeKey, 64)
	for i := range key {
		key[i] = byte(i)
	}
	encName, err := crypto.EncryptAESCBCHMAC([]byte("api_token"), key)
	require.NoError(t, err)
	encVal, err := crypto.EncryptAESCBCHMAC([]byte("tok-abc"), key)
	require.NoError(t, err)

	item := map[string]any{
		"fields": []any{
			map[string]any{"name": encName, "value": encVal, "type": float64(1)},
		},
	}

	got := FindExistingValue(item, "api_token", key)
	require.NotNil(t, got)
	assert.Equal(t, "tok-abc", *got)

	assert.Nil(t, FindExistingValue(item, "missing_field", key))
}

func TestRandomAlphanumeric_Length(t *testing.T) {
	s, err := RandomAlphanumeric(40)
	require.NoError(t, err)
	assert.Len(t, s, 40)
}
