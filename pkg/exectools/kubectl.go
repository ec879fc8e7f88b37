package exectools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// GetClusterSecretValue fetches a single key from a Kubernetes Secret via
// `kubectl get secret ... -o json` and base64-decodes it.
func GetClusterSecretValue(ctx context.Context, name, namespace, key string) (string, error) {
	out, err := Run(ctx, "", "kubectl", "get", "secret", name, "-n", namespace, "-o", "json")
	if err != nil {
		return "", fmt.Errorf("get cluster secret %s/%s: %w", namespace, name, err)
	}

	var secret struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(out, &secret); err != nil {
		return "", rotatorerr.New(rotatorerr.IO, "exectools.GetClusterSecretValue: decode", err)
	}

	raw, ok := secret.Data[key]
	if !ok {
		return "", rotatorerr.New(rotatorerr.Resolution, "exectools.GetClusterSecretValue",
			fmt.Errorf("key %q not present in secret %s/%s", key, namespace, name))
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return "", rotatorerr.New(rotatorerr.IO, "exectools.GetClusterSecretValue: base64 decode", err)
	}
	return string(decoded), nil
}
