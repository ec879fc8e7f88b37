package authflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredentials_FromEnv(t *testing.T) {
	t.Setenv("BW_EMAIL", "admin@example.com")
	t.Setenv("BW_PASSWORD", "hunter2")

	creds, err := ResolveCredentials(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestResolveCredentials_FromClusterFallback(t *testing.T) {
	t.Setenv("BW_EMAIL", "")
	t.Setenv("BW_PASSWORD", "")

	source := func(_ context.Context) (Credentials, error) {
		return Credentials{Email: "svc@example.com", Password: "from-cluster"}, nil
	}

	creds, err := ResolveCredentials(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "svc@example.com", creds.Email)
	assert.Equal(t, "from-cluster", creds.Password)
}

func TestResolveCredentials_ErrorsWithoutAnySource(t *testing.T) {
	t.Setenv("BW_EMAIL", "")
	t.Setenv("BW_PASSWORD", "")

	_, err := ResolveCredentials(t.Context(), nil)
	assert.Error(t, err)
}
