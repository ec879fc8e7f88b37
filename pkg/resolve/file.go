package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// FileValue reads gitRoot/relPath as YAML and walks the dot-separated
// keyPath, returning the final scalar value as a string. Errors if any
// segment is missing or the final value is not a scalar.
func FileValue(gitRoot, relPath, keyPath string) (string, error) {
	data, err := os.ReadFile(filepath.Join(gitRoot, relPath))
	if err != nil {
		return "", rotatorerr.New(rotatorerr.IO, "resolve.FileValue: read "+relPath, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", rotatorerr.New(rotatorerr.IO, "resolve.FileValue: parse "+relPath, err)
	}
	if len(doc.Content) == 0 {
		return "", rotatorerr.New(rotatorerr.Resolution, "resolve.FileValue", fmt.Errorf("%s is empty", relPath))
	}

	node := doc.Content[0]
	for _, part := range strings.Split(keyPath, ".") {
		var err error
		node, err = mapGet(node, part)
		if err != nil {
			return "", rotatorerr.New(rotatorerr.Resolution, "resolve.FileValue",
				fmt.Errorf("key path %q in %s: %w", keyPath, relPath, err))
		}
	}

	return scalarString(node)
}

func mapGet(node *yaml.Node, key string) (*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping to look up %q", key)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1], nil
		}
	}
	return nil, fmt.Errorf("key %q not found", key)
}

func scalarString(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("value is not a scalar")
	}
	switch node.Tag {
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	default:
		return node.Value, nil
	}
}
