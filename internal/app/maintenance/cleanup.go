package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medifixhq/medifix/internal/models"
	"github.com/medifixhq/medifix/internal/services"
	"github.com/medifixhq/medifix/internal/workflow"
	"github.com/medifixhq/medifix/pkg/logger"
	"github.com/medifixhq/medifix/pkg/metrics"
)

const (
	defaultAuditRetentionDays = 90
	defaultAutoCloseAfter     = 72 * time.Hour
	defaultAutoCloseSpec      = "@hourly"
	defaultAuditSpec          = "@daily"
)

// Cleaner coordinates background maintenance tasks: auto-closing work orders
// that reporters never confirmed and pruning stale audit logs.
type Cleaner struct {
	db    *gorm.DB
	audit *services.AuditService
	cron  *cron.Cron
	now   func() time.Time
	log   *zap.Logger

	retention      int
	autoCloseAfter time.Duration

	autoCloseSchedule string
	auditSchedule     string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cutoff comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithAutoCloseAfter adjusts how long a work order may wait for reporter
// confirmation before it is closed automatically.
func WithAutoCloseAfter(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.autoCloseAfter = age
		}
	}
}

// WithAutoCloseSchedule overrides the cron specification for the auto-close job.
func WithAutoCloseSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.autoCloseSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil audit service
// disables the retention job.
func NewCleaner(db *gorm.DB, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                db,
		audit:             audit,
		now:               time.Now,
		retention:         defaultAuditRetentionDays,
		autoCloseAfter:    defaultAutoCloseAfter,
		autoCloseSchedule: defaultAutoCloseSpec,
		auditSchedule:     defaultAuditSpec,
		log:               logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the maintenance jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.db != nil {
		if _, err := c.cron.AddFunc(c.autoCloseSchedule, func() {
			if _, err := c.AutoCloseStale(context.Background()); err != nil {
				c.log.Warn("auto-close failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if _, err := c.audit.CleanupOlderThan(context.Background(), c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured maintenance routines sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.db != nil {
		if _, err := c.AutoCloseStale(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// AutoCloseStale closes work orders that sat in reporter confirmation longer
// than the configured age. The status guard in the update keeps the job safe
// against reporters acting concurrently.
func (c *Cleaner) AutoCloseStale(ctx context.Context) (int64, error) {
	now := c.now().UTC()
	cutoff := now.Add(-c.autoCloseAfter)

	var stale []models.WorkOrder
	err := c.db.WithContext(ctx).
		Select("id", "hospital_id").
		Where("status = ? AND COALESCE(engineer_approved_at, updated_at) < ?", workflow.StatusPendingReporterClosure, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var closed int64
	for _, record := range stale {
		result := c.db.WithContext(ctx).Model(&models.WorkOrder{}).
			Where("id = ? AND status = ?", record.ID, workflow.StatusPendingReporterClosure).
			Updates(map[string]any{
				"status":         workflow.StatusAutoClosed,
				"auto_closed_at": now,
			})
		if result.Error != nil {
			return closed, result.Error
		}
		if result.RowsAffected == 0 {
			continue
		}

		closed++
		metrics.WorkOrdersAutoClosed.Inc()

		if c.audit != nil {
			hospitalID := record.HospitalID
			if err := c.audit.Log(ctx, services.AuditEntry{
				HospitalID: &hospitalID,
				Username:   "system",
				Action:     "work_order.auto_close",
				Resource:   record.ID,
				Result:     "success",
				Metadata: map[string]any{
					"from": string(workflow.StatusPendingReporterClosure),
					"to":   string(workflow.StatusAutoClosed),
				},
			}); err != nil {
				c.log.Warn("auto-close audit failed", zap.String("work_order_id", record.ID), zap.Error(err))
			}
		}
	}

	if closed > 0 {
		c.log.Info("auto-closed stale work orders", zap.Int64("count", closed))
	}

	return closed, nil
}
