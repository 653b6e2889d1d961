// Package scheduling builds the monthly shift assignment model: rank
// normalization, constraint emission, objective composition and the
// projection of a solved assignment back into a readable schedule.
package scheduling

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	"github.com/spec-kit/shift-scheduler/internal/solver"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

// Generator runs one monthly computation: validate, build, compose,
// solve, project. Stateless across invocations; every model object is
// local to one call.
type Generator struct {
	policy Policy
	solver solver.Solver
	logger *zap.Logger
}

// NewGenerator wires a generator. A nil logger is replaced by a no-op.
func NewGenerator(policy Policy, s solver.Solver, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{policy: policy, solver: s, logger: logger}
}

// Generate computes the schedule for the configured month. A non-Optimal
// solver status is returned as a MODEL_INFEASIBLE domain error; nothing
// partial ever escapes.
func (g *Generator) Generate(staffs []domain.StaffRecord, config domain.MonthlyConfig, requests domain.MonthRequests) (domain.Schedule, error) {
	if err := g.validate(staffs, config, requests); err != nil {
		return nil, err
	}

	roster := BuildRoster(staffs)
	model := NewModelBuilder(g.policy, roster, config, requests).Build()
	ComposeObjective(g.policy, roster, config, model)

	g.logger.Info("solving shift model",
		zap.Int("year", config.Year),
		zap.Int("month", int(config.Month)),
		zap.Int("variables", model.Problem.NumVariables()),
		zap.Int("constraints", model.Problem.NumConstraints()),
	)

	started := time.Now()
	sol := g.solver.Solve(model.Problem)
	elapsed := time.Since(started)

	if sol.Status != solver.Optimal {
		g.logger.Warn("shift model not solved",
			zap.String("status", sol.Status.String()),
			zap.Duration("elapsed", elapsed),
			zap.Int("nodes", sol.Nodes),
		)
		return nil, apperrors.NewModelInfeasible(sol.Status.String(), map[string]any{
			"year":  config.Year,
			"month": int(config.Month),
		})
	}

	g.logger.Info("shift model solved",
		zap.Duration("elapsed", elapsed),
		zap.Int("nodes", sol.Nodes),
		zap.Float64("objective", sol.Objective),
	)

	return Project(roster, requests, model, sol), nil
}

func (g *Generator) validate(staffs []domain.StaffRecord, config domain.MonthlyConfig, requests domain.MonthRequests) error {
	if err := g.policy.Validate(); err != nil {
		return apperrors.NewInternalError(err)
	}
	if len(staffs) == 0 {
		return apperrors.NewDataError("roster is empty", nil)
	}
	if config.Year < 2000 || config.Month < time.January || config.Month > time.December {
		return apperrors.NewDataError("invalid schedule month", map[string]any{
			"year": config.Year, "month": int(config.Month),
		})
	}
	ids := make(map[string]bool, len(staffs))
	for _, s := range staffs {
		if s.ID == "" {
			return apperrors.NewDataError("staff record without id", map[string]any{"name": s.Name})
		}
		if ids[s.ID] {
			return apperrors.NewDataError("duplicate staff id", map[string]any{"staff_id": s.ID})
		}
		ids[s.ID] = true
	}
	days := config.DaysInMonth()
	for staffID, set := range requests {
		if !ids[staffID] {
			return apperrors.NewDataError("request for unknown staff", map[string]any{"staff_id": staffID})
		}
		for day, req := range set {
			if day < 1 || day > days {
				return apperrors.NewDataError("request outside month", map[string]any{
					"staff_id": staffID, "day": day,
				})
			}
			if err := req.Validate(); err != nil {
				return apperrors.NewDataError(
					fmt.Sprintf("invalid request: %v", err),
					map[string]any{"staff_id": staffID, "day": day},
				)
			}
		}
	}
	return nil
}
