package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shift-scheduler/internal/domain"
)

// MonthlyConfigRepository reads the per-month store configuration.
type MonthlyConfigRepository interface {
	Get(ctx context.Context, year int, month time.Month) (*domain.MonthlyConfig, error)
}

type monthlyConfigRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlyConfigRepository instantiates the repository.
func NewMonthlyConfigRepository(pool *pgxpool.Pool) MonthlyConfigRepository {
	return &monthlyConfigRepository{pool: pool}
}

func (r *monthlyConfigRepository) Get(ctx context.Context, year int, month time.Month) (*domain.MonthlyConfig, error) {
	const query = `
        SELECT daily_sales, sales_low, hours_low, sales_high, hours_high,
               min_skills, min_staff_open, min_staff_close, meeting_overrides
        FROM monthly_configs WHERE year=$1 AND month=$2`

	cfg := domain.MonthlyConfig{Year: year, Month: month}
	var salesRaw, skillsRaw, meetingsRaw []byte
	if err := r.pool.QueryRow(ctx, query, year, int(month)).Scan(
		&salesRaw,
		&cfg.LaborCaps.SalesLow,
		&cfg.LaborCaps.HoursLow,
		&cfg.LaborCaps.SalesHigh,
		&cfg.LaborCaps.HoursHigh,
		&skillsRaw,
		&cfg.MinStaffCounts.Open,
		&cfg.MinStaffCounts.Close,
		&meetingsRaw,
	); err != nil {
		return nil, err
	}

	var err error
	if cfg.DailySales, err = decodeDayMap[int](salesRaw); err != nil {
		return nil, fmt.Errorf("decode daily sales: %w", err)
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &cfg.MinSkills); err != nil {
			return nil, fmt.Errorf("decode min skills: %w", err)
		}
	}
	if cfg.MeetingOverrides, err = decodeDayMap[[]string](meetingsRaw); err != nil {
		return nil, fmt.Errorf("decode meeting overrides: %w", err)
	}
	return &cfg, nil
}

// decodeDayMap parses a JSONB object with stringified day-number keys.
func decodeDayMap[T any](raw []byte) (map[int]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var byKey map[string]T
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, err
	}
	result := make(map[int]T, len(byKey))
	for key, value := range byKey {
		day, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("day key %q is not a number", key)
		}
		result[day] = value
	}
	return result, nil
}
