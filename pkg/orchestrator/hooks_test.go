package orchestrator

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/rotator-helper/pkg/manifest"
)

func installRecordingHook(t *testing.T, recordPath string) manifest.HookCommand {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts require a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\nenv | grep ^ROTATOR_KEY_ > " + recordPath + "\n"
	path := filepath.Join(dir, "record-hook.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return manifest.HookCommand{Command: path}
}

func TestExecuteHooks_InjectsSecretEnvVars(t *testing.T) {
	recordPath := filepath.Join(t.TempDir(), "env.txt")
	hook := installRecordingHook(t, recordPath)

	err := ExecuteHooks(t.Context(), []manifest.HookCommand{hook}, "", false, map[string]string{"password": "s3cr3t"})
	require.NoError(t, err)

	content, err := os.ReadFile(recordPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ROTATOR_KEY_PASSWORD=s3cr3t")
}

func TestExecuteHooks_DryRunExecutesNothing(t *testing.T) {
	recordPath := filepath.Join(t.TempDir(), "env.txt")
	hook := installRecordingHook(t, recordPath)

	err := ExecuteHooks(t.Context(), []manifest.HookCommand{hook}, "", true, map[string]string{"password": "s3cr3t"})
	require.NoError(t, err)

	_, statErr := os.Stat(recordPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecuteHooks_NonZeroExitIsError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts require a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\nexit 1\n"
	path := filepath.Join(dir, "fail-hook.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	err := ExecuteHooks(t.Context(), []manifest.HookCommand{{Command: path}}, "", false, nil)
	assert.Error(t, err)
}
