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

// ScheduleRepository persists and reads generated schedules.
type ScheduleRepository interface {
	Upsert(ctx context.Context, doc *domain.ScheduleDocument) error
	Get(ctx context.Context, year int, month time.Month) (*domain.ScheduleDocument, error)
}

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository instantiates the repository.
func NewScheduleRepository(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) Upsert(ctx context.Context, doc *domain.ScheduleDocument) error {
	const query = `
        INSERT INTO schedules (year, month, schedule, created_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (year, month) DO UPDATE
        SET schedule=EXCLUDED.schedule, created_at=EXCLUDED.created_at`

	raw, err := encodeSchedule(doc.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	_, err = r.pool.Exec(ctx, query, doc.Year, int(doc.Month), raw, doc.CreatedAt)
	return err
}

func (r *scheduleRepository) Get(ctx context.Context, year int, month time.Month) (*domain.ScheduleDocument, error) {
	const query = `
        SELECT schedule, created_at
        FROM schedules WHERE year=$1 AND month=$2`

	doc := domain.ScheduleDocument{Year: year, Month: month}
	var raw []byte
	if err := r.pool.QueryRow(ctx, query, year, int(month)).Scan(&raw, &doc.CreatedAt); err != nil {
		return nil, err
	}
	schedule, err := decodeDayMap[[]domain.Assignment](raw)
	if err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	doc.Schedule = schedule
	return &doc, nil
}

// encodeSchedule writes day keys as strings, the document-store layout
// the frontend reads.
func encodeSchedule(s domain.Schedule) ([]byte, error) {
	byKey := make(map[string][]domain.Assignment, len(s))
	for day, assignments := range s {
		byKey[strconv.Itoa(day)] = assignments
	}
	return json.Marshal(byKey)
}
