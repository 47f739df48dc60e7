package session

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/domain/model"
	"marketplace/internal/repository"
	"marketplace/internal/retry"

	"github.com/rs/zerolog"
)

// 何回待ってもプロフィールが見つからなかった
var ErrProfileMissing = errors.New("profile not found after retries")

type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (model.Profile, error)
}

// Bootstrapper はサインイン直後のプロフィール取得を行う。
// 登録直後はプロフィール行がまだ見えないことがあるので、NotFound のときだけ待って再取得する。
type Bootstrapper struct {
	profiles ProfileFinder
	policy   retry.Policy
	log      zerolog.Logger
}

func NewBootstrapper(profiles ProfileFinder, policy retry.Policy, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{profiles: profiles, policy: policy, log: log}
}

// Load はプロフィールを返す。NotFound 以外のエラーは即座に返す。
func (b *Bootstrapper) Load(ctx context.Context, userID string) (model.Profile, error) {
	var profile model.Profile

	err := b.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		p, err := b.profiles.FindByID(ctx, userID)
		if err == nil {
			profile = p
			return nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			b.log.Debug().
				Str("user_id", userID).
				Int("attempt", attempt).
				Msg("profile not visible yet")
			return retry.Retryable(err)
		}
		return err
	})

	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, retry.ErrExhausted):
		b.log.Warn().Str("user_id", userID).Msg("profile bootstrap gave up")
		return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileMissing, userID)
	default:
		return model.Profile{}, err
	}
}
