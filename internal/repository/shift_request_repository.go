package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shift-scheduler/internal/domain"
	apperrors "github.com/spec-kit/shift-scheduler/pkg/util"
)

// ShiftRequestRepository reads staff wishes for a month.
type ShiftRequestRepository interface {
	ListByMonth(ctx context.Context, year int, month time.Month) (domain.MonthRequests, error)
}

type shiftRequestRepository struct {
	pool *pgxpool.Pool
}

// NewShiftRequestRepository instantiates the repository.
func NewShiftRequestRepository(pool *pgxpool.Pool) ShiftRequestRepository {
	return &shiftRequestRepository{pool: pool}
}

// requestRecord is the JSONB wire form of one day's request.
type requestRecord struct {
	Type  string `json:"type"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (r *shiftRequestRepository) ListByMonth(ctx context.Context, year int, month time.Month) (domain.MonthRequests, error) {
	const query = `
        SELECT staff_id, requests
        FROM shift_requests WHERE year=$1 AND month=$2`

	rows, err := r.pool.Query(ctx, query, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(domain.MonthRequests)
	for rows.Next() {
		var staffID string
		var raw []byte
		if err := rows.Scan(&staffID, &raw); err != nil {
			return nil, err
		}
		byDay, err := decodeDayMap[requestRecord](raw)
		if err != nil {
			return nil, apperrors.NewDataError(
				fmt.Sprintf("malformed requests document: %v", err),
				map[string]any{"staff_id": staffID},
			)
		}
		set := make(domain.RequestSet, len(byDay))
		for day, rec := range byDay {
			req, err := parseRequest(rec)
			if err != nil {
				return nil, apperrors.NewDataError(
					fmt.Sprintf("malformed request: %v", err),
					map[string]any{"staff_id": staffID, "day": day},
				)
			}
			set[day] = req
		}
		if len(set) > 0 {
			result[staffID] = set
		}
	}
	return result, rows.Err()
}

func parseRequest(rec requestRecord) (domain.ShiftRequest, error) {
	req := domain.ShiftRequest{Type: domain.RequestType(rec.Type)}
	if req.Type == domain.RequestCustomWindow {
		start, err := domain.ParseClockTime(rec.Start)
		if err != nil {
			return domain.ShiftRequest{}, err
		}
		end, err := domain.ParseClockTime(rec.End)
		if err != nil {
			return domain.ShiftRequest{}, err
		}
		req.Start, req.End = start, end
	}
	if err := req.Validate(); err != nil {
		return domain.ShiftRequest{}, err
	}
	return req, nil
}
