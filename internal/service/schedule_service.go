package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/observability"
	"github.com/spec-kit/shift-scheduler/internal/persistence"
	"github.com/spec-kit/shift-scheduler/internal/repository"
	"github.com/spec-kit/shift-scheduler/internal/scheduling"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

// ScheduleService orchestrates one generation run: lock the month, load
// the input documents, run the generator and persist the result. Nothing
// is written unless the solve was Optimal.
type ScheduleService struct {
	staff     repository.StaffRepository
	configs   repository.MonthlyConfigRepository
	requests  repository.ShiftRequestRepository
	schedules repository.ScheduleRepository
	locks     persistence.MonthLocker
	generator *scheduling.Generator
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// ScheduleDependencies bundles collaborators.
type ScheduleDependencies struct {
	StaffRepo    repository.StaffRepository
	ConfigRepo   repository.MonthlyConfigRepository
	RequestRepo  repository.ShiftRequestRepository
	ScheduleRepo repository.ScheduleRepository
	Locks        persistence.MonthLocker
	Generator    *scheduling.Generator
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewScheduleService creates the service.
func NewScheduleService(deps ScheduleDependencies) *ScheduleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		staff:     deps.StaffRepo,
		configs:   deps.ConfigRepo,
		requests:  deps.RequestRepo,
		schedules: deps.ScheduleRepo,
		locks:     deps.Locks,
		generator: deps.Generator,
		logger:    logger,
		metrics:   deps.Metrics,
		now:       time.Now,
	}
}

// Generate computes and persists the schedule for one month.
func (s *ScheduleService) Generate(ctx context.Context, year int, month time.Month) (*domain.ScheduleDocument, error) {
	if year < 2000 || month < time.January || month > time.December {
		return nil, apperrors.NewDataError("invalid schedule month", map[string]any{
			"year": year, "month": int(month),
		})
	}

	release, acquired, err := s.locks.Acquire(ctx, year, int(month))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !acquired {
		return nil, apperrors.NewConflict("schedule generation already running for this month", map[string]any{
			"year": year, "month": int(month),
		})
	}
	defer release()

	staffs, err := s.staff.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	config, err := s.configs.Get(ctx, year, month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDataError("monthly configuration missing", map[string]any{
				"year": year, "month": int(month),
			})
		}
		return nil, apperrors.MapError(err)
	}
	requests, err := s.requests.ListByMonth(ctx, year, month)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	started := s.now()
	schedule, err := s.generator.Generate(staffs, *config, requests)
	if s.metrics != nil {
		status := "Optimal"
		if err != nil {
			status = apperrors.ToDomainError(err).Code
		}
		s.metrics.RecordSolve(status, s.now().Sub(started))
	}
	if err != nil {
		return nil, err
	}

	doc := &domain.ScheduleDocument{
		Year:      year,
		Month:     month,
		Schedule:  schedule,
		CreatedAt: s.now().UTC(),
	}
	if err := s.schedules.Upsert(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("schedule persisted",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("days", len(schedule)),
	)
	return doc, nil
}

// GetSchedule reads a previously persisted schedule.
func (s *ScheduleService) GetSchedule(ctx context.Context, year int, month time.Month) (*domain.ScheduleDocument, error) {
	doc, err := s.schedules.Get(ctx, year, month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("schedule", map[string]any{
				"year": year, "month": int(month),
			})
		}
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}
