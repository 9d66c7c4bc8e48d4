package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/internal/services"
	"github.com/charlesng35/fleetcn/pkg/logger"
)

const (
	defaultExpirySpec         = "@daily"
	defaultAuditSpec          = "@daily"
	defaultAuditRetentionDays = 90
)

// Scheduler runs the background maintenance jobs: the document expiry scan and audit log
// retention.
type Scheduler struct {
	expiry    *ExpiryScanner
	audit     *services.AuditService
	cron      *cron.Cron
	log       *zap.Logger
	retention int

	expirySchedule string
	auditSchedule  string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithExpirySchedule overrides the cron specification for the expiry scan.
func WithExpirySchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.expirySchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.auditSchedule = spec
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(s *Scheduler) {
		if days > 0 {
			s.retention = days
		}
	}
}

// NewScheduler constructs a Scheduler. A nil scanner or audit service skips that job.
func NewScheduler(expiry *ExpiryScanner, audit *services.AuditService, opts ...Option) *Scheduler {
	s := &Scheduler{
		expiry:         expiry,
		audit:          audit,
		retention:      defaultAuditRetentionDays,
		expirySchedule: defaultExpirySpec,
		auditSchedule:  defaultAuditSpec,
		log:            logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

// Start registers the jobs with the cron scheduler and launches it.
func (s *Scheduler) Start() error {
	if s.expiry == nil && s.audit == nil {
		return nil
	}

	if s.expiry != nil {
		if _, err := s.cron.AddFunc(s.expirySchedule, func() {
			if _, err := s.expiry.Scan(context.Background()); err != nil {
				s.log.Warn("expiry scan failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if s.audit != nil {
		if _, err := s.cron.AddFunc(s.auditSchedule, func() {
			if _, err := s.audit.CleanupOlderThan(context.Background(), s.retention); err != nil {
				s.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every configured job sequentially.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if s.expiry != nil {
		if _, err := s.expiry.Scan(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if s.audit != nil {
		if _, err := s.audit.CleanupOlderThan(ctx, s.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
