// Package manifest defines the rotation.yaml schema and the loader that
// reads one or many of them from a monorepo checkout.
package manifest

import (
	"strconv"
	"strings"
)

// RotationManifest is the top-level document stored in each rotation.yaml.
type RotationManifest struct {
	Version int                 `yaml:"version"`
	Secrets []SecretDefinition  `yaml:"secrets"`
	Users   []UserDefinition    `yaml:"users"`
}

// SecretDefinition describes one vault item and where its rotated values
// should be delivered.
type SecretDefinition struct {
	Name                 string             `yaml:"name"`
	Description          string             `yaml:"description,omitempty"`
	Vaultwarden          VaultwardenTarget  `yaml:"vaultwarden"`
	Kubernetes           KubernetesTarget   `yaml:"kubernetes"`
	AdditionalKubernetes []KubernetesTarget `yaml:"additionalKubernetes,omitempty"`
	Authentik            *AuthentikTarget   `yaml:"authentik,omitempty"`
	Keys                 []KeyDefinition    `yaml:"keys"`
	Policy               *RotationPolicy    `yaml:"policy,omitempty"`
	Hooks                *SecretHooks       `yaml:"hooks,omitempty"`
	AccessUsers          []string           `yaml:"accessUsers,omitempty"`
}

// VaultwardenTarget locates the vault item a secret definition rotates.
type VaultwardenTarget struct {
	CipherID      string   `yaml:"cipherId,omitempty"`
	Name          string   `yaml:"name,omitempty"`
	Folder        string   `yaml:"folder,omitempty"`
	Collections   []string `yaml:"collections,omitempty"`
	CollectionIDs []string `yaml:"collectionIds,omitempty"`
}

// KubernetesTarget describes where a generated sealed secret manifest is
// written.
type KubernetesTarget struct {
	Name      string            `yaml:"secretName"`
	Namespace string            `yaml:"namespace"`
	Path      string            `yaml:"path"`
	Labels    map[string]string `yaml:"labels,omitempty"`
}

// AuthentikTarget describes an Authentik blueprint this secret's rotated
// value should also be written into.
type AuthentikTarget struct {
	Path     string              `yaml:"path"`
	Metadata AuthentikMetadata   `yaml:"metadata"`
}

// AuthentikMetadata is the blueprint entry's model identity and the
// field its rotated value is stored under.
type AuthentikMetadata struct {
	Name        string            `yaml:"name,omitempty"`
	Model       string            `yaml:"model"`
	Identifiers map[string]string `yaml:"identifiers"`
	SecretField string            `yaml:"secret_field,omitempty"`
}

// KeyType names a value-production strategy for a KeyDefinition.
type KeyType string

const (
	KeyTypeRandom KeyType = "random"
	KeyTypeStatic KeyType = "static"
	KeyTypeFile   KeyType = "file"
	KeyTypeK8s    KeyType = "k8s"
	KeyTypeSSH    KeyType = "ssh"
)

// KeyDefinition names one field of the vault item and how its value is
// produced.
type KeyDefinition struct {
	Name      string        `yaml:"name"`
	Type      KeyType       `yaml:"type,omitempty"`
	Length    int           `yaml:"length,omitempty"`
	Value     string        `yaml:"value,omitempty"`
	Source    *KeySource    `yaml:"source,omitempty"`
	Generator string        `yaml:"generator,omitempty"`
}

// KeySource locates a value for the File key type. The K8s key type
// instead sources from the secret's own Kubernetes target (see
// valueengine.produceK8s).
type KeySource struct {
	Path    string `yaml:"path,omitempty"`
	KeyPath string `yaml:"keyPath,omitempty"`
}

// RotationPolicy controls when a secret is due for rotation. Schedule is
// a duration string of the form "<n>d" (e.g. "30d"); anything else is
// treated as unset and falls back to DefaultRotationDays.
type RotationPolicy struct {
	Schedule string `yaml:"schedule,omitempty"`
}

// SecretHooks are shell commands run before and after a secret rotates.
type SecretHooks struct {
	Pre  []HookCommand `yaml:"pre,omitempty"`
	Post []HookCommand `yaml:"post,omitempty"`
}

// HookCommand is a single pre/post hook invocation.
type HookCommand struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Shell   bool              `yaml:"shell,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// UserDefinition describes a vault member whose password this run should
// also rotate.
type UserDefinition struct {
	Name      string           `yaml:"name"`
	Email     string           `yaml:"email"`
	Authentik *AuthentikTarget `yaml:"authentik,omitempty"`
}

// DefaultRotationDays is used when a SecretDefinition has no Policy, or
// its Schedule doesn't parse.
const DefaultRotationDays = 30

// RotationDays returns the configured rotation window, or the default.
func (d SecretDefinition) RotationDays() int {
	if d.Policy == nil {
		return DefaultRotationDays
	}
	days, ok := parseScheduleDays(d.Policy.Schedule)
	if !ok {
		return DefaultRotationDays
	}
	return days
}

// parseScheduleDays parses a "<n>d" schedule string into a day count.
func parseScheduleDays(schedule string) (int, bool) {
	if !strings.HasSuffix(schedule, "d") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(schedule, "d"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
