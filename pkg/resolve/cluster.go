package resolve

import (
	"context"
	"fmt"

	"github.com/cuemby/rotator-helper/pkg/exectools"
)

// ClusterSecretValue fetches a key from a Kubernetes Secret via kubectl.
func ClusterSecretValue(ctx context.Context, secretName, namespace, key string) (string, error) {
	val, err := exectools.GetClusterSecretValue(ctx, secretName, namespace, key)
	if err != nil {
		return "", fmt.Errorf("resolve cluster secret value: %w", err)
	}
	return val, nil
}
