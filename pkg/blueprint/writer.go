// Package blueprint writes Authentik blueprint YAML files: a single
// model entry whose attrs carry the rotated secret value under a
// configurable field name.
package blueprint

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
)

// DefaultSecretField is used when an AuthentikTarget does not specify
// SecretField.
const DefaultSecretField = "client_secret"

type document struct {
	Version int     `yaml:"version"`
	Entries []entry `yaml:"entries"`
}

type entry struct {
	Model       string            `yaml:"model"`
	Identifiers map[string]string `yaml:"identifiers"`
	Attrs       map[string]string `yaml:"attrs"`
}

// Write renders target's blueprint document with secretValue stored
// under target.Metadata.SecretField (or DefaultSecretField) and writes
// it to target.Path, creating parent directories as needed.
func Write(target manifest.AuthentikTarget, secretValue string) error {
	field := target.Metadata.SecretField
	if field == "" {
		field = DefaultSecretField
	}

	doc := document{
		Version: 1,
		Entries: []entry{
			{
				Model:       target.Metadata.Model,
				Identifiers: target.Metadata.Identifiers,
				Attrs:       map[string]string{field: secretValue},
			},
		},
	}

	if err := os.MkdirAll(filepath.Dir(target.Path), 0o755); err != nil {
		return fmt.Errorf("create parent directory for blueprint %s: %w", target.Path, err)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal blueprint %s: %w", target.Path, err)
	}
	if err := os.WriteFile(target.Path, out, 0o644); err != nil {
		return fmt.Errorf("write blueprint %s: %w", target.Path, err)
	}

	log.WithComponent("blueprint").Info().Str("path", target.Path).Str("model", target.Metadata.Model).Msg("wrote authentik blueprint")
	return nil
}

// PickValue selects which produced key's value should populate an
// Authentik blueprint's secret field: client_secret, then password,
// then secret, in that priority order.
func PickValue(values map[string]string) (string, bool) {
	for _, key := range []string{"client_secret", "password", "secret"} {
		if v, ok := values[key]; ok {
			return v, true
		}
	}
	return "", false
}
