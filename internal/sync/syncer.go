package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	"github.com/ltanh/qrflow/internal/service"
)

// Syncer drains dirty records to the backend and confirms them locally.
type Syncer struct {
	store     service.Storage
	backend   service.Backend
	now       func() time.Time
	retry     service.RetryOptions
	batchSize int
}

// SyncerConfig holds syncer tuning knobs.
type SyncerConfig struct {
	Retry     service.RetryOptions
	BatchSize int
}

// DefaultSyncerConfig returns the default syncer configuration.
func DefaultSyncerConfig() SyncerConfig {
	return SyncerConfig{
		BatchSize: 50,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// NewSyncer creates a syncer over the local store and backend.
func NewSyncer(store service.Storage, backend service.Backend, cfg SyncerConfig) *Syncer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Syncer{
		store:     store,
		backend:   backend,
		retry:     cfg.Retry,
		batchSize: cfg.BatchSize,
		now:       time.Now,
	}
}

// SyncOnce pushes all currently dirty records in batches. Records are only
// marked synced after the backend confirms the batch; a failed batch stays
// dirty for the next pass.
func (s *Syncer) SyncOnce(ctx context.Context) (service.SyncStats, error) {
	start := s.now()
	stats := service.SyncStats{}

	dirty, err := s.store.GetUnsyncedRecords(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load unsynced records: %w", err)
	}

	if len(dirty) == 0 {
		stats.Duration = s.now().Sub(start)
		return stats, nil
	}

	slog.Info("Syncing records", "count", len(dirty))

	for offset := 0; offset < len(dirty); offset += s.batchSize {
		end := offset + s.batchSize
		if end > len(dirty) {
			end = len(dirty)
		}
		batch := dirty[offset:end]

		pushErr := common.WithRetry(ctx, func() error {
			return s.backend.PushRecords(ctx, batch)
		}, s.retry)

		if pushErr != nil {
			stats.Failed += len(batch)
			slog.Warn("Record batch sync failed",
				"batch_size", len(batch),
				"error", pushErr)
			continue
		}

		ids := recordIDs(batch)
		if err := s.store.MarkRecordsSynced(ctx, ids, s.now().UTC()); err != nil {
			stats.Failed += len(batch)
			slog.Error("Failed to confirm synced records", "error", err)
			continue
		}
		stats.Pushed += len(batch)
	}

	stats.Duration = s.now().Sub(start)

	if stats.Failed > 0 {
		return stats, fmt.Errorf("%w: %d of %d records failed",
			common.ErrSyncRejected, stats.Failed, len(dirty))
	}
	return stats, nil
}

// Run drains dirty records on the given interval until the context ends.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				slog.Warn("Background sync pass failed", "error", err)
			}
		}
	}
}

func recordIDs(records []model.QRRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
