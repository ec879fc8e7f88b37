// Package exectools wraps the external binaries the rotation engine
// shells out to: git, kubectl, ssh-keygen, and kubeseal. Every non-zero
// exit is surfaced as a rotatorerr.Subprocess error carrying stderr, and
// stdout as well except for RunPiped.
package exectools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// Run executes name with args in dir (cwd unchanged if dir is empty) and
// returns stdout. Non-zero exit returns a Subprocess error with both
// stdout and stderr attached.
func Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, rotatorerr.New(rotatorerr.Subprocess, fmt.Sprintf("%s %v", name, args),
			fmt.Errorf("%w\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String()))
	}
	return stdout.Bytes(), nil
}

// RunWithEnv executes name with args in dir, with env merged on top of the
// current process environment. Used for pre/post rotation hooks, which
// receive the rotated plaintext values as ROTATOR_KEY_* variables.
func RunWithEnv(ctx context.Context, dir string, env map[string]string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, rotatorerr.New(rotatorerr.Subprocess, fmt.Sprintf("%s %v", name, args),
			fmt.Errorf("%w\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String()))
	}
	return stdout.Bytes(), nil
}

// RunPiped executes name with args, writing stdin to the process's
// standard input and returning its standard output. Used for the
// kubeseal filter, which reads a plaintext manifest on stdin and writes
// the sealed manifest to stdout.
func RunPiped(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, rotatorerr.New(rotatorerr.Subprocess, fmt.Sprintf("%s %v", name, args),
			fmt.Errorf("%w\nstderr: %s", err, stderr.String()))
	}
	return stdout.Bytes(), nil
}

// FileExists is a small helper used by callers that need to conditionally
// pass a --cert flag to kubeseal only when a certificate file is present.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
