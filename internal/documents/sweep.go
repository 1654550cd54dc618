package documents

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/lexora-legal/lexora/jobs"
)

// SweepJob deletes stored objects whose metadata rows were removed.
// Orphaned keys sit in a grace-period queue so an accidental delete can
// still be recovered before the content is gone.
type SweepJob struct {
	pool   *pgxpool.Pool
	store  ObjectStore
	logger *slog.Logger
}

// NewSweepJob constructs a SweepJob.
func NewSweepJob(pool *pgxpool.Pool, store ObjectStore, logger *slog.Logger) *SweepJob {
	return &SweepJob{pool: pool, store: store, logger: logger}
}

// Handle processes TaskTypeRetentionSweep tasks. The orphan queue is
// global, not per firm; storage keys already carry the firm prefix.
func (j *SweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.RetentionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OlderThanDays < 1 {
		payload.OlderThanDays = 7
	}

	rows, err := j.pool.Query(ctx, `
		SELECT storage_key FROM orphaned_objects
		WHERE deleted_at < NOW() - make_interval(days => $1)
		LIMIT 500`, payload.OlderThanDays)
	if err != nil {
		return err
	}
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return err
		}
		keys = append(keys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	var swept atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, key := range keys {
		key := key
		group.Go(func() error {
			if j.store != nil {
				if err := j.store.Delete(groupCtx, key); err != nil {
					j.logger.Warn("sweep object", slog.String("key", key), slog.Any("error", err))
					return nil
				}
			}
			if _, err := j.pool.Exec(groupCtx, `DELETE FROM orphaned_objects WHERE storage_key = $1`, key); err != nil {
				return err
			}
			swept.Add(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	j.logger.Info("retention sweep", slog.Int("candidates", len(keys)), slog.Int64("swept", swept.Load()))
	return nil
}
