package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/rotator-helper/pkg/exectools"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
)

// ExecuteHooks runs each hook in order, injecting secretData as
// ROTATOR_KEY_<UPPER(name)> environment variables alongside any
// hook-specific env. In dry-run mode it logs what would run, redacting
// the secret values, and executes nothing.
func ExecuteHooks(ctx context.Context, hooks []manifest.HookCommand, cwd string, dryRun bool, secretData map[string]string) error {
	for _, hook := range hooks {
		logger := log.WithComponent("hooks")
		logger.Info().Str("command", hook.Command).Msg("running hook")

		if dryRun {
			for k := range secretData {
				logger.Info().Str("env", fmt.Sprintf("ROTATOR_KEY_%s", strings.ToUpper(k))).Msg("[dry-run] would set <REDACTED>")
			}
			continue
		}

		env := map[string]string{}
		for k, v := range secretData {
			env[fmt.Sprintf("ROTATOR_KEY_%s", strings.ToUpper(k))] = v
		}
		for k, v := range hook.Env {
			env[k] = v
		}

		name, args := hook.Command, hook.Args
		if hook.Shell {
			cmdString := hook.Command
			for _, a := range hook.Args {
				cmdString += " " + a
			}
			name, args = "sh", []string{"-c", cmdString}
		}

		out, err := exectools.RunWithEnv(ctx, cwd, env, name, args...)
		if err != nil {
			return fmt.Errorf("hook %q failed: %w", hook.Command, err)
		}
		if len(out) > 0 {
			logger.Info().Str("output", strings.TrimSpace(string(out))).Msg("hook output")
		}
	}
	return nil
}
