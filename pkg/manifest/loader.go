package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// ManifestFileName is the conventional name scan mode looks for under
// each app directory.
const ManifestFileName = "rotation.yaml"

// Load reads and parses a single manifest file.
func Load(path string) (*RotationManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.IO, "manifest.Load: read "+path, err)
	}

	var m RotationManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, rotatorerr.New(rotatorerr.Config, "manifest.Load: parse "+path, err)
	}
	return &m, nil
}

// Scan walks appsDir for every rotation.yaml and concatenates their
// secrets and users into a single manifest. The first file that fails to
// parse aborts the whole scan with its path attached to the error.
func Scan(appsDir string) (*RotationManifest, error) {
	combined := &RotationManifest{Version: 1}

	err := filepath.WalkDir(appsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ManifestFileName {
			return nil
		}

		m, loadErr := Load(path)
		if loadErr != nil {
			return fmt.Errorf("scan %s: %w", path, loadErr)
		}
		combined.Secrets = append(combined.Secrets, m.Secrets...)
		combined.Users = append(combined.Users, m.Users...)
		return nil
	})
	if err != nil {
		return nil, rotatorerr.New(rotatorerr.Config, "manifest.Scan", err)
	}
	return combined, nil
}

// FilterByName keeps only secrets whose name contains substr. An empty
// substr matches everything.
func FilterByName(secrets []SecretDefinition, substr string) []SecretDefinition {
	if substr == "" {
		return secrets
	}
	out := make([]SecretDefinition, 0, len(secrets))
	for _, s := range secrets {
		if strings.Contains(s.Name, substr) {
			out = append(out, s)
		}
	}
	return out
}

// FindMonorepoRoot locates the checkout root that contains an apps/
// directory: first by climbing from `git rev-parse --show-toplevel`
// through its ancestors, then by climbing ancestor directories from the
// current working directory.
func FindMonorepoRoot() (string, error) {
	if root, err := gitToplevel(); err == nil {
		for dir := root; ; dir = filepath.Dir(dir) {
			if hasAppsDir(dir) {
				return dir, nil
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", rotatorerr.New(rotatorerr.IO, "manifest.FindMonorepoRoot: getwd", err)
	}

	dir := cwd
	for {
		if hasAppsDir(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", rotatorerr.New(rotatorerr.Config, "manifest.FindMonorepoRoot",
		fmt.Errorf("no ancestor of %s contains an apps/ directory", cwd))
}

func gitToplevel() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func hasAppsDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "apps"))
	return err == nil && info.IsDir()
}
