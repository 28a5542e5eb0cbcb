package cron

import (
	"context"
	"log/slog"
	"time"
)

// TokenPurger deletes refresh tokens that expired long enough ago.
type TokenPurger interface {
	PurgeExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type AuthJobs struct {
	purger TokenPurger
}

func NewAuthJobs(purger TokenPurger) *AuthJobs {
	return &AuthJobs{purger: purger}
}

func (j *AuthJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("purge_expired_refresh_tokens", time.Hour, j.PurgeExpiredRefreshTokens)
}

func (j *AuthJobs) PurgeExpiredRefreshTokens(ctx context.Context) error {
	n, err := j.purger.PurgeExpiredRefreshTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Cron: purged expired refresh tokens", "count", n)
	}
	return nil
}
