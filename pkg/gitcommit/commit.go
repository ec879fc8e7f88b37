// Package gitcommit commits the sealed secret and blueprint files a
// rotation run produces. It is a no-op when the working tree is clean.
package gitcommit

import (
	"context"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/exectools"
	"github.com/cuemby/rotator-helper/pkg/log"
)

const commitMessage = "Rotate secrets (Decentralized) [skip ci]"

// CommitAll stages every change under gitRoot and commits it, unless
// there is nothing to commit. Returns true if a commit was made.
func CommitAll(ctx context.Context, gitRoot string) (bool, error) {
	logger := log.WithComponent("gitcommit")

	status, err := exectools.Run(ctx, gitRoot, "git", "status", "--porcelain")
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(string(status)) == "" {
		logger.Info().Msg("no changes to commit")
		return false, nil
	}

	if _, err := exectools.Run(ctx, gitRoot, "git", "add", "."); err != nil {
		return false, err
	}

	if _, err := exectools.Run(ctx, gitRoot, "git", "diff", "--cached", "--quiet"); err == nil {
		logger.Info().Msg("no staged changes to commit")
		return false, nil
	}

	if _, err := exectools.Run(ctx, gitRoot, "git", "commit", "-m", commitMessage); err != nil {
		return false, err
	}
	logger.Info().Msg("committed rotation changes")
	return true, nil
}
