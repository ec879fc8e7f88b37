package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/cuemby/rotator-helper/pkg/blueprint"
	"github.com/cuemby/rotator-helper/pkg/events"
	"github.com/cuemby/rotator-helper/pkg/log"
	"github.com/cuemby/rotator-helper/pkg/manifest"
	"github.com/cuemby/rotator-helper/pkg/valueengine"
)

// DjangoPBKDF2Iterations matches Django's default pbkdf2_sha256 hasher
// iteration count as of this engine's writing.
const DjangoPBKDF2Iterations = 260000

const djangoSaltLength = 12
const djangoPasswordLength = 32

// RotateUser generates a new password for a vault member and, if an
// Authentik target is configured, writes a blueprint carrying the
// Django-compatible pbkdf2_sha256 hash. Writing the new password back
// to the vault member's own vault entry is intentionally not
// implemented: there is no vault API for setting another user's master
// password, only for the user's ciphers.
func (r *Rotator) RotateUser(ctx context.Context, user manifest.UserDefinition) error {
	logger := log.WithComponent("orchestrator").With().Str("user", user.Name).Logger()
	logger.Info().Msg("processing user")

	newPassword, err := valueengine.RandomAlphanumeric(djangoPasswordLength)
	if err != nil {
		return fmt.Errorf("generate password for user %q: %w", user.Name, err)
	}

	djangoHash, err := djangoPBKDF2SHA256(newPassword)
	if err != nil {
		return fmt.Errorf("hash password for user %q: %w", user.Name, err)
	}

	if r.Opts.DryRun {
		logger.Info().Msg("[dry-run] would rotate vault password for user")
	} else {
		logger.Warn().Msg("vault password write-back for users is not implemented; skipping vault update")
	}

	if user.Authentik != nil {
		if err := blueprint.Write(*user.Authentik, djangoHash); err != nil {
			r.publishUser(events.EventUserFailed, user.Name, err.Error())
			return fmt.Errorf("write authentik blueprint for user %q: %w", user.Name, err)
		}
	}

	if r.Metrics != nil {
		r.Metrics.RecordUserRotated()
	}
	r.publishUser(events.EventUserDone, user.Name, "")
	return nil
}

// RotateUsers processes every user definition sequentially; user
// rotation volume is small enough that concurrency isn't worth the
// added complexity.
func (r *Rotator) RotateUsers(ctx context.Context, users []manifest.UserDefinition) (succeeded, failed int) {
	for _, u := range users {
		if err := r.RotateUser(ctx, u); err != nil {
			failed++
			log.WithComponent("orchestrator").Error().Err(err).Str("user", u.Name).Msg("user rotation failed")
			continue
		}
		succeeded++
	}
	return succeeded, failed
}

func djangoPBKDF2SHA256(password string) (string, error) {
	salt, err := valueengine.RandomAlphanumeric(djangoSaltLength)
	if err != nil {
		return "", err
	}
	hash := pbkdf2.Key([]byte(password), []byte(salt), DjangoPBKDF2Iterations, sha256.Size, sha256.New)
	hashB64 := base64.StdEncoding.EncodeToString(hash)
	return fmt.Sprintf("pbkdf2_sha256$%d$%s$%s", DjangoPBKDF2Iterations, salt, hashB64), nil
}

func (r *Rotator) publishUser(t events.EventType, userName, message string) {
	if r.Broker == nil {
		return
	}
	r.Broker.Publish(&events.Event{
		Type:     t,
		Message:  message,
		Metadata: map[string]string{"user": userName},
	})
}
