package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/rotator-helper/pkg/authflow"
	"github.com/cuemby/rotator-helper/pkg/events"
	"github.com/cuemby/rotator-helper/pkg/gitcommit"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/metrics"
	"github.com/cuemby/rotator-helper/pkg/orchestrator"
)

const defaultVaultBaseURL = "https://vaultwarden.obaven.org"

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate secrets and vault user passwords",
	RunE:  runRotate,
}

func init() {
	rotateCmd.Flags().String("config", "data/config.yaml", "Path to a rotation.yaml manifest")
	rotateCmd.Flags().Bool("scan", true, "Scan for rotation.yaml files under apps/ instead of using --config")
	rotateCmd.Flags().Bool("dry-run", false, "Run without committing changes")
	rotateCmd.Flags().Bool("debug", false, "Enable verbose debug logging")
	rotateCmd.Flags().Bool("force", false, "Force rotation regardless of policy")
	rotateCmd.Flags().Bool("debug-api", false, "Debug: log API payloads (large)")
	rotateCmd.Flags().Bool("debug-crypto", false, "Accepted and ignored; no crypto-operation logging is emitted")
	rotateCmd.Flags().Bool("debug-auth", false, "Accepted and ignored; no authentication-step logging is emitted")
	rotateCmd.Flags().String("secret", "", "Filter rotation to secret names containing this substring")
	rotateCmd.Flags().String("metrics-addr", "", "If set, serve Prometheus metrics on this address while rotating")
	rotateCmd.Flags().String("sealed-secret-cert", "", "Path to the sealed-secrets public key certificate for kubeseal")
}

func runRotate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, _ := cmd.Flags().GetString("config")
	scan, _ := cmd.Flags().GetBool("scan")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	debug, _ := cmd.Flags().GetBool("debug")
	force, _ := cmd.Flags().GetBool("force")
	debugAPI, _ := cmd.Flags().GetBool("debug-api")
	secretFilter, _ := cmd.Flags().GetString("secret")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	certPath, _ := cmd.Flags().GetString("sealed-secret-cert")

	if debug {
		logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
		log.Init(log.Config{Level: log.DebugLevel, JSONOutput: logJSON})
	}

	logger := log.WithComponent("cli")

	if debug {
		logger.Info().Bool("api", debugAPI).Msg("debug mode enabled")
	}

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")
	}

	logger.Info().Msg("authenticating to vault")
	creds, err := authflow.ResolveCredentials(ctx, nil)
	if err != nil {
		return fmt.Errorf("resolve credentials: %w", err)
	}

	result, err := authflow.Authenticate(ctx, authflow.Config{
		BaseURL:       defaultVaultBaseURL,
		Email:         creds.Email,
		Password:      creds.Password,
		SessionKeyB64: os.Getenv("BW_SESSION"),
		DebugAPI:      debugAPI,
	})
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	logger.Info().Str("org_id", result.OrgID).Msg("obtained organization key")

	gitRoot, err := manifest.FindMonorepoRoot()
	if err != nil {
		return fmt.Errorf("find monorepo root: %w", err)
	}

	var doc *manifest.RotationManifest
	if scan {
		doc, err = manifest.Scan(gitRoot + "/apps")
	} else {
		doc, err = manifest.Load(configPath)
	}
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	secrets := doc.Secrets
	if secretFilter != "" {
		secrets = manifest.FilterByName(secrets, secretFilter)
	}

	rotator := &orchestrator.Rotator{
		Client:  result.Client,
		OrgID:   result.OrgID,
		OrgKey:  result.OrgKey,
		UserKey: result.UserKey,
		Opts: orchestrator.Options{
			DryRun:               dryRun,
			Force:                force,
			Debug:                debug,
			GitRoot:              gitRoot,
			SealedSecretCertPath: certPath,
		},
		Broker:  events.NewBroker(),
		Metrics: metrics.NewRecorder(),
	}
	rotator.Broker.Start()
	defer rotator.Broker.Stop()

	logger.Info().Int("count", len(secrets)).Msg("rotating secrets")
	succeeded, failed, err := rotator.RotateAll(ctx, secrets)
	if err != nil {
		return fmt.Errorf("rotate secrets: %w", err)
	}

	logger.Info().Int("count", len(doc.Users)).Msg("rotating users")
	userSucceeded, userFailed := rotator.RotateUsers(ctx, doc.Users)

	logger.Info().
		Int("secrets_succeeded", succeeded).
		Int("secrets_failed", failed).
		Int("users_succeeded", userSucceeded).
		Int("users_failed", userFailed).
		Msg("rotation run summary")

	if failed > 0 || userFailed > 0 {
		return fmt.Errorf("rotation failed for %d secrets and %d users", failed, userFailed)
	}

	if !dryRun {
		committed, err := gitcommit.CommitAll(ctx, gitRoot)
		if err != nil {
			return fmt.Errorf("commit changes: %w", err)
		}
		if committed {
			logger.Info().Msg("committed rotation changes")
		}
	}

	logger.Info().Msg("rotation completed successfully")
	return nil
}
