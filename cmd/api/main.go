package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shift-scheduler/internal/api/http"
	"github.com/spec-kit/shift-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/shift-scheduler/internal/config"
	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/observability"
	"github.com/spec-kit/shift-scheduler/internal/persistence"
	"github.com/spec-kit/shift-scheduler/internal/repository"
	"github.com/spec-kit/shift-scheduler/internal/scheduling"
	"github.com/spec-kit/shift-scheduler/internal/service"
	"github.com/spec-kit/shift-scheduler/internal/solver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	policy, err := policyFromConfig(cfg.Scheduler)
	if err != nil {
		logger.Fatal("invalid scheduler config", zap.Error(err))
	}

	pool := pg.PoolHandle()
	metrics := observability.NewMetrics()
	generator := scheduling.NewGenerator(policy, solver.New(solver.Options{
		MaxNodes: cfg.Scheduler.SolverMaxNodes,
	}), logger)

	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		StaffRepo:    repository.NewStaffRepository(pool),
		ConfigRepo:   repository.NewMonthlyConfigRepository(pool),
		RequestRepo:  repository.NewShiftRequestRepository(pool),
		ScheduleRepo: repository.NewScheduleRepository(pool),
		Locks:        persistence.NewRedisMonthLock(redis, cfg.Scheduler.LockTTL()),
		Generator:    generator,
		Logger:       logger,
		Metrics:      metrics,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Schedules: handlers.NewScheduleHandler(scheduleService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func policyFromConfig(cfg config.SchedulerConfig) (scheduling.Policy, error) {
	policy := scheduling.DefaultPolicy()
	policy.RequestedOffIsHard = cfg.RequestedOffIsHard
	policy.LaborCapPartnersOnly = cfg.LaborCapPartnersOnly
	policy.DeptCoverageIsHard = cfg.DeptCoverageIsHard
	policy.RestIntervalIsHard = cfg.RestIntervalIsHard
	policy.ConsecutiveRunThreshold = cfg.ConsecutiveRunThreshold
	policy.MinLeadershipPresent = cfg.MinLeadershipPresent

	opener, err := domain.ParseClockTime(cfg.OpenerLatestStart)
	if err != nil {
		return scheduling.Policy{}, err
	}
	closer, err := domain.ParseClockTime(cfg.CloserEarliestEnd)
	if err != nil {
		return scheduling.Policy{}, err
	}
	policy.OpenerLatestStart = opener
	policy.CloserEarliestEnd = closer

	if err := policy.Validate(); err != nil {
		return scheduling.Policy{}, err
	}
	return policy, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
