package authflow

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/cuemby/rotator-helper/pkg/exectools"
	"github.com/cuemby/rotator-helper/pkg/rotatorerr"
)

// Credentials is an email/password pair resolved from the environment,
// a cluster secret, or an interactive prompt.
type Credentials struct {
	Email    string
	Password string
}

// ClusterCredentialSource locates a fallback email/password pair stored
// as a Kubernetes Secret, e.g. via exectools.GetClusterSecretValue. It is
// injectable so tests never shell out to kubectl.
type ClusterCredentialSource func(ctx context.Context) (Credentials, error)

// ResolveCredentials resolves the admin account used to authenticate:
// BW_EMAIL/BW_PASSWORD environment variables first, then the cluster
// source if provided, then an interactive masked prompt if BW_EMAIL
// alone is set and stdin is a terminal.
func ResolveCredentials(ctx context.Context, clusterSource ClusterCredentialSource) (Credentials, error) {
	email := os.Getenv("BW_EMAIL")
	password := os.Getenv("BW_PASSWORD")

	if email != "" && password != "" {
		return Credentials{Email: email, Password: password}, nil
	}

	if clusterSource != nil {
		if creds, err := clusterSource(ctx); err == nil {
			return creds, nil
		}
	}

	if email != "" && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := promptPassword(email)
		if err != nil {
			return Credentials{}, rotatorerr.New(rotatorerr.Config, "authflow.ResolveCredentials: prompt", err)
		}
		return Credentials{Email: email, Password: password}, nil
	}

	return Credentials{}, rotatorerr.New(rotatorerr.Config, "authflow.ResolveCredentials",
		fmt.Errorf("no credentials available: set BW_EMAIL and BW_PASSWORD, or run interactively"))
}

func promptPassword(email string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", email)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ClusterSecretCredentialSource builds a ClusterCredentialSource backed
// by a Kubernetes Secret containing "email" and "password" keys.
func ClusterSecretCredentialSource(secretName, namespace string) ClusterCredentialSource {
	return func(ctx context.Context) (Credentials, error) {
		email, err := exectools.GetClusterSecretValue(ctx, secretName, namespace, "email")
		if err != nil {
			return Credentials{}, err
		}
		password, err := exectools.GetClusterSecretValue(ctx, secretName, namespace, "password")
		if err != nil {
			return Credentials{}, err
		}
		return Credentials{Email: email, Password: password}, nil
	}
}
