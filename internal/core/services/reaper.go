package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tessera-labs/tessera-core/internal/core/domain"
	"github.com/tessera-labs/tessera-core/internal/core/ports/driven"
)

const reaperLockKey = "reaper"

// Reaper resubmits documents stranded in processing. A run abandoned by a
// crashed or restarted worker leaves its document in processing forever;
// the reaper periodically lists processing documents whose last update is
// older than the staleness window and enqueues a fresh run for each.
//
// For multi-instance deployments, configure a DistributedLock so only one
// instance reaps per cycle.
type Reaper struct {
	metadata  driven.MetadataStore
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	lockTTL    time.Duration
}

// ReaperConfig holds configuration for the reaper.
type ReaperConfig struct {
	MetadataStore driven.MetadataStore
	TaskQueue     driven.TaskQueue
	Lock          driven.DistributedLock // Optional: skip cycles another instance is running
	Logger        *slog.Logger
	Interval      time.Duration // How often to scan (default: 1m)
	StaleAfter    time.Duration // Age at which a processing document counts as abandoned (default: 30m)
	BatchSize     int           // Max documents resubmitted per cycle (default: 100)
	LockTTL       time.Duration // TTL for the distributed lock (default: 2x interval)
}

// NewReaper creates a new reaper.
func NewReaper(cfg ReaperConfig) *Reaper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = time.Minute
	}
	staleAfter := cfg.StaleAfter
	if staleAfter == 0 {
		staleAfter = 30 * time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 2 * interval
	}

	return &Reaper{
		metadata:   cfg.MetadataStore,
		taskQueue:  cfg.TaskQueue,
		lock:       cfg.Lock,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		lockTTL:    lockTTL,
	}
}

// Start begins the reaper loop.
// It runs until Stop is called or context is cancelled.
func (r *Reaper) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	r.logger.Info("reaper starting", "interval", r.interval, "stale_after", r.staleAfter)

	go r.run(ctx)

	return nil
}

// Stop gracefully stops the reaper.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("reaper stopped")
}

// run is the main reaper loop.
func (r *Reaper) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Run immediately on start
	r.reapOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper context cancelled")
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.reapOnce(ctx)
		}
	}
}

// reapOnce lists stale processing documents and enqueues a fresh run for
// each. If a distributed lock is configured, it acquires the lock first so
// multiple instances don't resubmit the same documents.
func (r *Reaper) reapOnce(ctx context.Context) {
	if r.lock != nil {
		acquired, err := r.lock.Acquire(ctx, reaperLockKey, r.lockTTL)
		if err != nil {
			r.logger.Warn("failed to acquire reaper lock", "error", err)
			return
		}
		if !acquired {
			r.logger.Debug("reaper lock held by another instance, skipping cycle")
			return
		}
		defer func() {
			if err := r.lock.Release(ctx, reaperLockKey); err != nil {
				r.logger.Warn("failed to release reaper lock", "error", err)
			}
		}()
	}

	cutoff := time.Now().Add(-r.staleAfter)
	docs, err := r.metadata.ListStaleProcessing(ctx, cutoff, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list stale processing documents", "error", err)
		return
	}

	for _, doc := range docs {
		task := domain.NewReprocessDocumentTask(doc.OwnerID, doc.ID)
		if err := r.taskQueue.Enqueue(ctx, task); err != nil {
			r.logger.Error("failed to resubmit stale document",
				"document_id", doc.ID,
				"error", err,
			)
			continue
		}

		// Refresh updated_at so the document leaves the stale window while
		// its resubmitted run waits in the queue.
		if err := r.metadata.SetStatus(ctx, doc.ID, domain.StatusProcessing, ""); err != nil {
			r.logger.Warn("failed to refresh stale document",
				"document_id", doc.ID,
				"error", err,
			)
		}

		r.logger.Info("resubmitted stale document",
			"document_id", doc.ID,
			"owner_id", doc.OwnerID,
			"task_id", task.ID,
			"stale_since", doc.UpdatedAt,
		)
	}
}
