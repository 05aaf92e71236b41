package session

import (
	"context"
	"sync"
	"time"

	"timetrack-session-svc/src/internal/config"

	"github.com/sirupsen/logrus"
)

// Deleter is the single store capability the reclaimer needs.
type Deleter interface {
	Delete(ctx context.Context, sessionID string) error
}

// Reclaimer deletes session records in bounded batches. Deletes within a
// batch fan out concurrently; items that fail the fan-out get one
// sequential retry each. Batches are paced apart to stay under the store's
// throughput limits.
type Reclaimer struct {
	store     Deleter
	batchSize int
	pause     time.Duration
}

func NewReclaimer(store Deleter, cfg *config.CleanupSettings) *Reclaimer {
	batchSize := cfg.ReclaimBatchSize
	if batchSize <= 0 || batchSize > config.DefaultReclaimBatchSize {
		batchSize = config.DefaultReclaimBatchSize
	}
	pauseMs := cfg.ReclaimPauseMs
	if pauseMs <= 0 {
		pauseMs = config.DefaultReclaimPauseMs
	}
	return &Reclaimer{
		store:     store,
		batchSize: batchSize,
		pause:     time.Duration(pauseMs) * time.Millisecond,
	}
}

// Reclaim deletes the given sessions and returns how many deletions were
// confirmed. It never returns an error: individual failures are logged and
// excluded from the count.
func (r *Reclaimer) Reclaim(ctx context.Context, sessionIDs []string) int {
	if len(sessionIDs) == 0 {
		return 0
	}

	deleted := 0
	for start := 0; start < len(sessionIDs); start += r.batchSize {
		end := start + r.batchSize
		if end > len(sessionIDs) {
			end = len(sessionIDs)
		}
		batch := sessionIDs[start:end]

		count := r.reclaimBatch(ctx, batch)
		deleted += count

		logrus.WithFields(logrus.Fields{
			"batch_size": len(batch),
			"deleted":    count,
		}).Debug("Reclaim batch finished")

		// no pause after the final batch
		if end < len(sessionIDs) {
			time.Sleep(r.pause)
		}
	}

	return deleted
}

func (r *Reclaimer) reclaimBatch(ctx context.Context, batch []string) int {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		count  int
		failed []string
	)

	for _, id := range batch {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			err := r.store.Delete(ctx, sessionID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, sessionID)
				return
			}
			count++
		}(id)
	}
	wg.Wait()

	// one sequential retry per item the fan-out could not delete
	for _, id := range failed {
		if err := r.store.Delete(ctx, id); err != nil {
			logrus.WithError(err).WithField("session_id", id).Error("Failed to reclaim session after retry")
			continue
		}
		count++
	}

	return count
}
