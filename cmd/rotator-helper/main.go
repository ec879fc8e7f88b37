package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/rotator-helper/pkg/log"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rotator-helper",
	Short: "rotator-helper rotates credentials across Vaultwarden, Kubernetes, and Authentik",
	Long: `rotator-helper is a GitOps-driven credential rotation engine.

It reads rotation.yaml manifests describing vault items and their
downstream Kubernetes and Authentik targets, rotates each item's
values on a configurable schedule, and writes the results back as
sealed Kubernetes secrets and Authentik blueprints committed to git.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("rotator-helper version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(rotateCmd)
	rootCmd.AddCommand(scaffoldCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(listCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func notImplemented(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s (not yet implemented)", name),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("%q is not yet implemented", name)
		},
	}
}

var scaffoldCmd = notImplemented("scaffold")
var setupCmd = notImplemented("setup")
var checkCmd = notImplemented("check")
var findCmd = notImplemented("find")
var listCmd = notImplemented("list")
