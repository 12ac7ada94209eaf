package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cast-press/models"
)

// Publisher promotes scheduled drafts to published once their scheduled date
// has passed. It never requires a reader-triggered check: a cron tick issues
// one bulk update per content table, so concurrent manual edits to other
// fields are never lost and a failed tick is simply retried on the next one.
type Publisher struct {
	db       *gorm.DB
	log      *zap.Logger
	schedule string

	cron    *cron.Cron
	entry   cron.EntryID
	running atomic.Bool

	// OnPublished is called with the number of items transitioned by a
	// successful tick, when that number is non-zero. Used for metrics.
	OnPublished func(count int64)
}

// NewPublisher creates a Publisher driven by the given cron schedule.
func NewPublisher(db *gorm.DB, schedule string, log *zap.Logger) *Publisher {
	return &Publisher{
		db:       db,
		log:      log,
		schedule: schedule,
	}
}

// Start registers the tick with a cron scheduler and starts it.
func (p *Publisher) Start() error {
	p.cron = cron.New()
	entry, err := p.cron.AddFunc(p.schedule, p.tick)
	if err != nil {
		return err
	}
	p.entry = entry
	p.cron.Start()
	p.log.Info("Publish scheduler started", zap.String("schedule", p.schedule))
	return nil
}

// Stop halts the scheduler. A tick already in flight finishes on its own.
func (p *Publisher) Stop() {
	if p.cron != nil {
		p.cron.Stop()
		p.log.Info("Publish scheduler stopped")
	}
}

// tick is the cron entry point. Ticks are single-flight: if the store is slow
// enough that the previous tick is still running, this one is skipped instead
// of piling up overlapping bulk updates. A tick failure is logged and
// swallowed; the matching predicate is re-evaluated from scratch next tick.
func (p *Publisher) tick() {
	if !p.running.CompareAndSwap(false, true) {
		p.log.Warn("Previous publish tick still running, skipping")
		return
	}
	defer p.running.Store(false)

	count, err := p.RunOnce(context.Background())
	if err != nil {
		p.log.Error("Publish tick failed", zap.Error(err))
		return
	}
	if count > 0 {
		p.log.Info("Scheduled content published", zap.Int64("count", count))
		if p.OnPublished != nil {
			p.OnPublished(count)
		}
	}
}

// RunOnce executes a single tick: every draft whose scheduled date has passed
// becomes published, with publish_date set to the same timestamp across the
// whole batch. Returns the number of items transitioned.
func (p *Publisher) RunOnce(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	var total int64
	for _, model := range []interface{}{&models.Article{}, &models.Podcast{}} {
		count, err := p.publishDue(ctx, model, now)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

// publishDue issues the bulk conditional update for one content table. The
// predicate and the write are a single statement, so an item manually edited
// between ticks either still matches (and transitions) or no longer does.
// Archived and already-published items can never match.
func (p *Publisher) publishDue(ctx context.Context, model interface{}, now time.Time) (int64, error) {
	res := p.db.WithContext(ctx).
		Model(model).
		Where("status = ? AND scheduled_date <= ?", models.StatusDraft, now).
		Updates(map[string]interface{}{
			"status":       models.StatusPublished,
			"publish_date": now,
		})
	return res.RowsAffected, res.Error
}
