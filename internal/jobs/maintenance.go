package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"codequest/internal/metrics"
)

type expiredOTPDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type visitorPruner interface {
	Cleanup(maxIdle time.Duration) int
}

type userCounter interface {
	GetTotalUsers(ctx context.Context) (int64, error)
}

// SweepExpiredOTPs deletes used and expired one-time passwords.
func SweepExpiredOTPs(otps expiredOTPDeleter) Job {
	return Job{
		Name: "sweep_expired_otps",
		Spec: "@every 15m",
		Run: func(ctx context.Context) error {
			deleted, err := otps.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				log.Info().Int64("deleted", deleted).Msg("Swept expired OTPs")
			}
			return nil
		},
	}
}

// PruneVisitors forgets rate limiter entries idle for longer than maxIdle.
func PruneVisitors(limiter visitorPruner, maxIdle time.Duration) Job {
	return Job{
		Name: "prune_rate_limiter",
		Spec: "@every 1m",
		Run: func(context.Context) error {
			if removed := limiter.Cleanup(maxIdle); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Pruned idle rate limiter visitors")
			}
			return nil
		},
	}
}

// RefreshUserGauge keeps the total users gauge current.
func RefreshUserGauge(users userCounter) Job {
	return Job{
		Name: "refresh_total_users",
		Spec: "@every 30s",
		Run: func(ctx context.Context) error {
			count, err := users.GetTotalUsers(ctx)
			if err != nil {
				return err
			}
			metrics.TotalUsers.Set(float64(count))
			return nil
		},
	}
}
