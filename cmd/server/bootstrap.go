package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/api"
	"github.com/charlesng35/fleetcn/internal/app"
	"github.com/charlesng35/fleetcn/internal/app/maintenance"
	iauth "github.com/charlesng35/fleetcn/internal/auth"
	"github.com/charlesng35/fleetcn/internal/middleware"
	"github.com/charlesng35/fleetcn/internal/realtime"
	"github.com/charlesng35/fleetcn/internal/services"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Hub       *realtime.Hub
	Scheduler *maintenance.Scheduler
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, background jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = app.OpenDatabase(cfg, true)
	if err != nil {
		return nil, err
	}

	verifier, err := iauth.NewTokenVerifier(cfg.Auth.VerifierConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise token verifier: %w", err)
	}

	if cfg.Notifications.Enabled {
		stack.Hub = realtime.NewHub(cfg.Notifications.AllowedOrigins...)
	}

	stack.Scheduler, err = newScheduler(stack.DB, stack.Hub, cfg)
	if err != nil {
		return nil, err
	}
	if err := stack.Scheduler.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.RateStore = middleware.NewMemoryRateStore()

	stack.Router, err = api.NewRouter(stack.DB, verifier, cfg, stack.Hub, stack.RateStore)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	log.Info("runtime ready",
		zap.Bool("notifications", stack.Hub != nil),
		zap.Bool("expiry_scan", cfg.Maintenance.Expiry.Enabled),
	)

	success = true
	return stack, nil
}

func newScheduler(db *gorm.DB, hub *realtime.Hub, cfg *app.Config) (*maintenance.Scheduler, error) {
	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	opts := []maintenance.Option{
		maintenance.WithExpirySchedule(cfg.Maintenance.Expiry.Schedule),
		maintenance.WithAuditRetentionDays(cfg.Maintenance.AuditRetentionDays),
	}

	if !cfg.Maintenance.Expiry.Enabled || !cfg.Notifications.Enabled {
		return maintenance.NewScheduler(nil, audit, opts...), nil
	}

	deps, err := maintenance.NewExpiryDependencies(db, hub)
	if err != nil {
		return nil, fmt.Errorf("initialise expiry scanner: %w", err)
	}

	scanner, err := maintenance.NewExpiryScanner(deps, cfg.Maintenance.Expiry.WarnDays, nil)
	if err != nil {
		return nil, err
	}
	return maintenance.NewScheduler(scanner, audit, opts...), nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		select {
		case <-s.Scheduler.Stop().Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown")
		}
	}

	if s.DB != nil {
		app.CloseDatabase(s.DB)
	}
}
