// Package orchestrator drives one rotation run: for each secret
// definition it resolves the vault item, checks the rotation policy,
// produces and applies new key values, pushes the update to the vault,
// writes sealed Kubernetes secrets and an optional Authentik blueprint,
// and runs any configured hooks. Secrets are rotated concurrently with a
// bounded fan-out; a failure on one secret never blocks another.
package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/cuemby/rotator-helper/pkg/blueprint"
	"github.com/cuemby/rotator-helper/pkg/crypto"
	"github.com/cuemby/rotator-helper/pkg/events"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/metrics"
	"github.com/cuemby/rotator-helper/pkg/resolve"
	"github.com/cuemby/rotator-helper/pkg/sealedsecret"
	"github.com/cuemby/rotator-helper/pkg/vaultclient"
)

// MaxConcurrentSecrets bounds how many secrets rotate at once.
const MaxConcurrentSecrets = 5

// Options configures a Rotator.
type Options struct {
	DryRun               bool
	Force                bool
	Debug                bool
	GitRoot              string
	SealedSecretCertPath string
}

// Rotator rotates secrets and users against one authenticated vault
// session.
type Rotator struct {
	Client  *vaultclient.Client
	OrgID   string
	OrgKey  crypto.CompositeKey
	UserKey crypto.CompositeKey
	Opts    Options
	Broker  *events.Broker
	Metrics *metrics.Recorder
}

// RotateAll rotates every secret with bounded concurrency, then reports
// how many succeeded and failed. It does not stop early on a failure.
func (r *Rotator) RotateAll(ctx context.Context, secrets []manifest.SecretDefinition) (succeeded, failed int, err error) {
	sem := semaphore.NewWeighted(MaxConcurrentSecrets)
	results := make([]error, len(secrets))

	errCh := make(chan struct{}, len(secrets))
	for i, secret := range secrets {
		if err := sem.Acquire(ctx, 1); err != nil {
			return succeeded, failed, fmt.Errorf("acquire rotation slot: %w", err)
		}
		go func(i int, secret manifest.SecretDefinition) {
			defer sem.Release(1)
			results[i] = r.RotateSecret(ctx, secret)
			errCh <- struct{}{}
		}(i, secret)
	}
	for range secrets {
		<-errCh
	}

	for i, e := range results {
		if e != nil {
			failed++
			log.WithSecret(secrets[i].Name).Error().Err(e).Msg("rotation failed")
			if r.Metrics != nil {
				r.Metrics.RecordSecretFailed(secrets[i].Name)
			}
		} else {
			succeeded++
		}
	}
	return succeeded, failed, nil
}

// RotateSecret runs one secret definition through its full lifecycle.
func (r *Rotator) RotateSecret(ctx context.Context, secret manifest.SecretDefinition) error {
	logger := log.WithSecret(secret.Name)

	if secret.Hooks != nil && len(secret.Hooks.Pre) > 0 {
		logger.Info().Msg("running pre-rotation hooks")
		if err := ExecuteHooks(ctx, secret.Hooks.Pre, r.Opts.GitRoot, r.Opts.DryRun, nil); err != nil {
			r.publish(events.EventSecretFailed, secret.Name, err.Error())
			return fmt.Errorf("pre-rotation hooks for %q: %w", secret.Name, err)
		}
	}

	cipherID, err := resolve.CipherID(ctx, r.Client, secret, r.OrgKey)
	if err != nil {
		r.publish(events.EventSecretFailed, secret.Name, err.Error())
		return fmt.Errorf("resolve cipher id for %q: %w", secret.Name, err)
	}
	r.publish(events.EventSecretResolved, secret.Name, cipherID)

	item, err := r.Client.GetItem(ctx, cipherID)
	if err != nil {
		r.publish(events.EventSecretFailed, secret.Name, err.Error())
		return fmt.Errorf("fetch item %s for %q: %w", cipherID, secret.Name, err)
	}

	notes, _ := item["notes"].(string)
	shouldRotate := r.Opts.Force || ShouldRotateByPolicy(notes, secret.RotationDays())
	if !shouldRotate {
		logger.Info().Msg("skipping rotation: within policy window")
		r.publish(events.EventSecretGatedSkip, secret.Name, "")
		if r.Metrics != nil {
			r.Metrics.RecordSecretSkipped(secret.Name)
		}
		return nil
	}

	prepared, err := PrepareUpdatedItem(ctx, item, secret, r.Opts.GitRoot, r.OrgKey, r.Opts.Force)
	if err != nil {
		r.publish(events.EventSecretFailed, secret.Name, err.Error())
		return fmt.Errorf("prepare values for %q: %w", secret.Name, err)
	}
	r.publish(events.EventSecretValuesProduced, secret.Name, "")

	if err := r.applyFolderAndCollections(ctx, item, secret); err != nil {
		r.publish(events.EventSecretFailed, secret.Name, err.Error())
		return fmt.Errorf("resolve folder/collections for %q: %w", secret.Name, err)
	}

	itemID, _ := item["id"].(string)
	if r.Opts.DryRun {
		logger.Info().Str("item_id", itemID).Msg("[dry-run] would update vault item")
	} else {
		if err := r.Client.UpdateItem(ctx, itemID, item); err != nil {
			r.publish(events.EventSecretFailed, secret.Name, err.Error())
			return fmt.Errorf("update item %s for %q: %w", itemID, secret.Name, err)
		}
		if ids, ok := item["collectionIds"].([]string); ok && len(ids) > 0 {
			if err := r.Client.UpdateCollections(ctx, itemID, ids); err != nil {
				r.publish(events.EventSecretFailed, secret.Name, err.Error())
				return fmt.Errorf("update collections for %q: %w", secret.Name, err)
			}
		}
	}
	r.publish(events.EventSecretVaultUpdated, secret.Name, itemID)

	if err := sealedsecret.WriteAll(ctx, secret, prepared.PlaintextValues, r.Opts.GitRoot, r.Opts.SealedSecretCertPath, r.Opts.DryRun); err != nil {
		r.publish(events.EventSecretFailed, secret.Name, err.Error())
		return fmt.Errorf("write kubernetes secrets for %q: %w", secret.Name, err)
	}
	r.publish(events.EventSecretFilesWritten, secret.Name, "")

	if secret.Hooks != nil && len(secret.Hooks.Post) > 0 {
		logger.Info().Msg("running post-rotation hooks")
		if err := ExecuteHooks(ctx, secret.Hooks.Post, r.Opts.GitRoot, r.Opts.DryRun, prepared.PlaintextValues); err != nil {
			r.publish(events.EventSecretFailed, secret.Name, err.Error())
			return fmt.Errorf("post-rotation hooks for %q: %w", secret.Name, err)
		}
	}
	r.publish(events.EventSecretHooksPosted, secret.Name, "")

	if secret.Authentik != nil {
		secretVal, ok := blueprint.PickValue(prepared.PlaintextValues)
		if !ok {
			logger.Warn().Msg("authentik target defined but no suitable secret value (client_secret, password, secret) found")
		} else if err := blueprint.Write(*secret.Authentik, secretVal); err != nil {
			r.publish(events.EventSecretFailed, secret.Name, err.Error())
			return fmt.Errorf("write authentik blueprint for %q: %w", secret.Name, err)
		}
	}

	if r.Metrics != nil {
		r.Metrics.RecordSecretRotated(secret.Name)
	}
	r.publish(events.EventSecretDone, secret.Name, "")
	logger.Info().Msg("rotation complete")
	return nil
}

func (r *Rotator) applyFolderAndCollections(ctx context.Context, item map[string]any, secret manifest.SecretDefinition) error {
	if secret.Vaultwarden.Folder != "" {
		folderID, err := resolve.FolderID(ctx, r.Client, secret.Vaultwarden.Folder, r.UserKey)
		if err != nil {
			return err
		}
		if folderID != "" {
			item["folderId"] = folderID
		}
	}

	delete(item, "collections")

	if len(secret.Vaultwarden.CollectionIDs) > 0 {
		item["collectionIds"] = secret.Vaultwarden.CollectionIDs
		return nil
	}

	if len(secret.Vaultwarden.Collections) > 0 {
		all, err := r.Client.ListCollections(ctx, r.OrgID)
		if err != nil {
			return fmt.Errorf("list collections: %w", err)
		}
		resolved := resolve.CollectionIDs(secret.Vaultwarden.Collections, all, r.OrgKey)
		if len(resolved) != len(secret.Vaultwarden.Collections) {
			log.WithSecret(secret.Name).Warn().Msg("could not resolve all requested collections")
		}
		item["collectionIds"] = resolved
	}
	return nil
}

func (r *Rotator) publish(t events.EventType, secretName, message string) {
	if r.Broker == nil {
		return
	}
	r.Broker.Publish(&events.Event{
		Type:     t,
		Message:  message,
		Metadata: map[string]string{"secret": secretName},
	})
}
