package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/api"
	"github.com/eventra/eventra/internal/app"
	"github.com/eventra/eventra/internal/app/maintenance"
	"github.com/eventra/eventra/internal/database"
	"github.com/eventra/eventra/internal/reminders"
	"github.com/eventra/eventra/internal/services"
	"github.com/eventra/eventra/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB              *gorm.DB
	NotificationSvc *services.NotificationService
	TeamSvc         *services.TeamService
	CalendarSvc     *services.CalendarService
	Engine          *reminders.Engine
	Scheduler       *reminders.Scheduler
	Sweeper         *maintenance.Sweeper
	Router          *gin.Engine
}

// bootstrapRuntime initialises the database, services, background jobs, and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.NotificationSvc, err = services.NewNotificationService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise notification service: %w", err)
	}

	stack.TeamSvc, err = services.NewTeamService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise team service: %w", err)
	}

	audience, err := reminders.NewResolver(stack.TeamSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise audience resolver: %w", err)
	}

	stack.Engine, err = reminders.NewEngine(stack.DB, stack.NotificationSvc, audience,
		reminders.WithLookahead(cfg.Reminders.Lookahead))
	if err != nil {
		return nil, fmt.Errorf("initialise reminder engine: %w", err)
	}

	stack.CalendarSvc, err = services.NewCalendarService(stack.DB, stack.Engine)
	if err != nil {
		return nil, fmt.Errorf("initialise calendar service: %w", err)
	}

	if cfg.Reminders.Enabled {
		stack.Scheduler, err = reminders.NewScheduler(stack.Engine,
			reminders.WithInterval(cfg.Reminders.PollInterval))
		if err != nil {
			return nil, fmt.Errorf("initialise reminder scheduler: %w", err)
		}
		if err := stack.Scheduler.Start(); err != nil {
			return nil, fmt.Errorf("start reminder scheduler: %w", err)
		}

		stack.Sweeper, err = maintenance.NewSweeper(stack.DB, stack.NotificationSvc,
			maintenance.WithRetentionDays(cfg.Reminders.RetentionDays),
			maintenance.WithSchedule(cfg.Reminders.SweepSchedule))
		if err != nil {
			return nil, fmt.Errorf("initialise retention sweeper: %w", err)
		}
		if err := stack.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("start retention sweeper: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg, stack.CalendarSvc, stack.Engine)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		<-s.Scheduler.Stop().Done()
	}

	if s.Sweeper != nil {
		stopCtx := s.Sweeper.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Sweeper.RunOnce(ctx); err != nil {
			log.Warn("retention shutdown sweep failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
