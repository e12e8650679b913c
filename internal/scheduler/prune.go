package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Pruner deletes expired rows and reports how many were removed.
type Pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// PruneJob wraps a Pruner as a scheduled job.
func PruneJob(kind string, p Pruner) JobFunc {
	return func(ctx context.Context) error {
		ctxRun, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		removed, err := p.PruneExpired(ctxRun)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.WithFields(log.Fields{"kind": kind, "removed": removed}).Info("scheduler: pruned expired tokens")
		}
		return nil
	}
}
