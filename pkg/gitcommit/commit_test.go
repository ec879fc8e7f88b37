package gitcommit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/exectools"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := exectools.Run(t.Context(), dir, "git", "init")
	if err != nil {
		t.Skip("git binary not available in this environment")
	}
	_, _ = exectools.Run(t.Context(), dir, "git", "config", "user.email", "test@example.com")
	_, _ = exectools.Run(t.Context(), dir, "git", "config", "user.name", "test")
	return dir
}

func TestCommitAll_NoChangesIsNoop(t *testing.T) {
	dir := initRepo(t)
	committed, err := CommitAll(t.Context(), dir)
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestCommitAll_CommitsNewFile(t *testing.T) {
	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.yaml"), []byte("data: x\n"), 0o644))

	committed, err := CommitAll(t.Context(), dir)
	require.NoError(t, err)
	assert.True(t, committed)

	log, err := exectools.Run(t.Context(), dir, "git", "log", "--oneline")
	require.NoError(t, err)
	assert.Contains(t, string(log), "Rotate secrets")
}
