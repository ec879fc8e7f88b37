// Package sealedsecret builds a Kubernetes Secret manifest from a
// secret definition's rotated values, pipes it through kubeseal, and
// writes the sealed manifest to the target file in the monorepo.
package sealedsecret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/rotator-helper/pkg/exectools"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
)

const managedByLabel = "managed-by"
const managedByValue = "rotator-helper"

// defaultCertRelPath, joined to gitRoot, is checked when no explicit cert
// path is configured;
// kubeseal falls back to contacting the cluster controller when the
// file is absent.
const defaultCertRelPath = "apps/security/sealed-secrets/secrets/sealed-secrets-public-key.crt"

// WriteAll writes the primary Kubernetes target and every additional
// target a secret definition names.
func WriteAll(ctx context.Context, secret manifest.SecretDefinition, values map[string]string, gitRoot, certPath string, dryRun bool) error {
	if err := Write(ctx, secret.Kubernetes, values, gitRoot, certPath, dryRun); err != nil {
		return err
	}
	for _, target := range secret.AdditionalKubernetes {
		if err := Write(ctx, target, values, gitRoot, certPath, dryRun); err != nil {
			return err
		}
	}
	return nil
}

// Write builds the stringData Secret for one Kubernetes target, seals
// it with kubeseal, and atomically writes the result to target.Path
// under gitRoot. In dry-run mode it logs the intended write and does
// nothing else.
func Write(ctx context.Context, target manifest.KubernetesTarget, values map[string]string, gitRoot, certPath string, dryRun bool) error {
	logger := log.WithComponent("sealedsecret")

	labels := map[string]string{managedByLabel: managedByValue}
	for k, v := range target.Labels {
		labels[k] = v
	}

	secretManifest := map[string]any{
		"apiVersion": "v1",
		"kind":       "Secret",
		"metadata": map[string]any{
			"name":      target.Name,
			"namespace": target.Namespace,
			"labels":    labels,
		},
		"type":       "Opaque",
		"stringData": values,
	}

	rendered, err := yaml.Marshal(secretManifest)
	if err != nil {
		return fmt.Errorf("marshal secret manifest for %s: %w", target.Name, err)
	}

	destPath := filepath.Join(gitRoot, target.Path)

	if dryRun {
		logger.Info().Str("path", destPath).Msg("[dry-run] would seal and write kubernetes secret")
		return nil
	}

	if certPath == "" {
		certPath = filepath.Join(gitRoot, defaultCertRelPath)
	}

	args := []string{"--format=yaml"}
	if exectools.FileExists(certPath) {
		args = append(args, "--cert="+certPath)
	}

	sealed, err := exectools.RunPiped(ctx, rendered, "kubeseal", args...)
	if err != nil {
		return fmt.Errorf("kubeseal %s: %w", target.Name, err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", destPath, err)
	}
	if err := atomicWrite(destPath, sealed); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}

	logger.Info().Str("path", destPath).Msg("wrote sealed secret")
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sealedsecret-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
