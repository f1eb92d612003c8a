package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpiredPruner removes rows whose TTL has lapsed and reports how many
// went away. The Postgres cache backend implements it; Redis and the
// in-memory backend expire entries on their own and never need a job.
type ExpiredPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type CleanupJob struct {
	pruners  map[string]ExpiredPruner
	interval time.Duration
	done     chan struct{}
}

func NewCleanupJob(interval time.Duration) *CleanupJob {
	return &CleanupJob{
		pruners:  make(map[string]ExpiredPruner),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Register adds a named pruner. Call before Start.
func (j *CleanupJob) Register(name string, pruner ExpiredPruner) {
	j.pruners[name] = pruner
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, pruner := range j.pruners {
		count, err := pruner.DeleteExpired(ctx)
		if err != nil {
			log.Error().Err(err).Msgf("failed to cleanup %s", name)
		} else if count > 0 {
			log.Info().Int64("count", count).Msgf("cleaned up %s", name)
		}
	}
}
